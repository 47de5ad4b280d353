// Package hal is the hardware abstraction layer for the heating controller.
//
// It defines narrow interfaces for the resources the firmware touches: the
// WiFi radio (station and access-point operations), digital I/O lines, the
// clock, and the hard-reset mechanism. The provisioning core and the
// control loop are written entirely against these interfaces.
//
// Two kinds of implementation exist:
//
//   - The Sim* types in this package: a complete in-memory board used by
//     the test suite and by host builds of heatingd. The simulated radio
//     models association latency and password checking against a scripted
//     set of visible networks.
//   - A board-specific implementation (TinyGo + cyw43439 on the Pico W
//     class of boards), provided behind build tags in a separate file when
//     targeting real hardware.
//
// The Clock interface exists because the radio status APIs are inherently
// poll-based: connect and reset-detection loops sleep in small fixed
// increments while checking a flag. Injecting the clock lets tests drive
// those loops deterministically without real delays.
package hal
