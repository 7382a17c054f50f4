package protocol

import "strconv"

// Response bodies
const (
	ResponseOK    = "OK"
	ResponseError = "ERROR"
	ResponseBusy  = "Sorry, busy."
)

// Reply prefixes body with the command's index tag so that a host
// pipelining several commands can match responses to requests.
func Reply(index uint8, body string) string {
	if index == NoIndex {
		return body
	}
	return "#" + strconv.Itoa(int(index)) + " " + body
}
