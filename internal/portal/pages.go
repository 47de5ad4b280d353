package portal

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/andoniskgr/heating-system/internal/hal"
)

// The portal pages are deliberately plain: no external assets, one screen,
// usable from whatever mini-browser the client OS pops up for captive
// portals.
var pageTemplates = template.Must(template.New("portal").Parse(`
{{define "index"}}<!DOCTYPE html>
<html>
<head><meta name="viewport" content="width=device-width,initial-scale=1">
<title>Heating Controller WiFi Setup</title></head>
<body>
<h1>Heating Controller WiFi Setup</h1>
<form action="/save" method="get">
<label>Network:</label><br>
<select name="ssid">
{{range .Networks}}<option value="{{.SSID}}">{{.SSID}} (RSSI: {{.RSSI}})</option>
{{else}}<option value="">-- No networks found --</option>
{{end}}</select><br><br>
<label>Password:</label><br>
<input type="password" name="password" placeholder="WiFi password"><br><br>
<button type="submit">Connect</button>
</form>
<p>Or enter hidden network:</p>
<form action="/save" method="get">
<input type="text" name="ssid" placeholder="SSID"><br>
<input type="password" name="password" placeholder="Password"><br>
<button type="submit">Connect</button>
</form>
</body>
</html>{{end}}

{{define "success"}}<!DOCTYPE html>
<html>
<head><title>Connected</title></head>
<body><h1>Connected! Rebooting...</h1>
<p>The controller will join {{.SSID}} after restart.</p>
</body>
</html>{{end}}

{{define "retry"}}<!DOCTYPE html>
<html>
<head><title>Connection failed</title></head>
<body><h1>Connection failed. Retrying...</h1>
<p>Attempt {{.Attempt}} of {{.Max}} did not succeed. Check the password and try again.</p>
<a href="/">Back</a>
</body>
</html>{{end}}

{{define "exhausted"}}<!DOCTYPE html>
<html>
<head><title>Connection failed</title></head>
<body><h1>Connection failed after {{.Max}} tries. Try again.</h1>
<a href="/">Back</a>
</body>
</html>{{end}}
`))

type indexData struct {
	Networks []hal.Network
}

type attemptData struct {
	SSID    string
	Attempt int
	Max     int
}

func renderPage(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s page: %w", name, err)
	}
	return buf.Bytes(), nil
}
