package captivedns

import (
	"encoding/binary"
	"net/netip"
)

const (
	// HeaderSize is the fixed DNS header length. Anything shorter is not
	// a query we can answer.
	HeaderSize = 12

	// ResponseFlags marks the reply as a standard response with recursion
	// desired/available (QR=1, RD=1, RA=1, RCODE=0).
	ResponseFlags = 0x8180

	// AnswerTTL is the time-to-live of the synthesized A record. Kept
	// short so clients re-ask once they leave the captive network.
	AnswerTTL = 60
)

// answerPointer is the fixed answer record prefix: a compression pointer
// to the question name at offset 0x0c, followed by TYPE A. CLASS, TTL and
// RDLENGTH are appended per response.
var answerPointer = [4]byte{0xC0, 0x0C, 0x00, 0x01}

// BuildResponse synthesizes a DNS response that resolves whatever name the
// query asked for to addr. This is the captive-portal trick: every lookup a
// joining client makes lands on the configuration page.
//
// The query's transaction ID is echoed, the question section is copied
// verbatim, and a single A record bound to addr with a short TTL is
// appended. Queries shorter than the DNS header, or a non-IPv4 addr, yield
// nil, meaning "send no response".
func BuildResponse(query []byte, addr netip.Addr) []byte {
	if len(query) < HeaderSize {
		return nil
	}
	if !addr.Is4() {
		return nil
	}

	question := query[HeaderSize:]
	ip := addr.As4()

	// Header + question echo + answer (pointer, type, class, TTL,
	// RDLENGTH, RDATA).
	resp := make([]byte, 0, HeaderSize+len(question)+16)

	// ID copied from the query, then flags and section counts:
	// 1 question, 1 answer, no authority, no additional.
	resp = append(resp, query[0], query[1])
	resp = binary.BigEndian.AppendUint16(resp, ResponseFlags)
	resp = binary.BigEndian.AppendUint16(resp, 1) // QDCOUNT
	resp = binary.BigEndian.AppendUint16(resp, 1) // ANCOUNT
	resp = binary.BigEndian.AppendUint16(resp, 0) // NSCOUNT
	resp = binary.BigEndian.AppendUint16(resp, 0) // ARCOUNT

	resp = append(resp, question...)

	resp = append(resp, answerPointer[:]...)
	resp = binary.BigEndian.AppendUint16(resp, 1) // CLASS IN
	resp = binary.BigEndian.AppendUint32(resp, AnswerTTL)
	resp = binary.BigEndian.AppendUint16(resp, 4) // RDLENGTH
	resp = append(resp, ip[:]...)

	return resp
}
