// Package tail reads newly appended lines from a growing file.
//
// Poll is the incremental reader behind the stream engine: given a Cursor it
// returns every complete line appended since the cursor and a new cursor that
// stops at the end of the last complete line, so a line the producer has only
// half written is never handed out. LastLines supports "show the newest N
// records" views, and Watch turns filesystem events into early wake-ups for
// callers that would otherwise sleep until their next poll.
package tail
