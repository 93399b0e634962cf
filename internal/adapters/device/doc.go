// Package device provides the kiosk's input sources: keyboard and QR
// scanner line readers, an NFC reader session and a facial capture
// directory. Every source feeds a ports.ScanSink until its context is done.
//
// A missing device is reported once and leaves its source idle. The kiosk
// keeps serving the other channels.
package device
