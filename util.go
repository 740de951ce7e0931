package main

import "strings"

// Arbitrary. Something low enough we won't hit message limit.
const maxTopicLength = 300

// isValidChannel reports whether a channel name is valid: spec.md §4.4
// JOIN states the sole criterion is that it starts with '#' (else numeric
// 403), confirmed by original_source/src/Commands.cpp's cmdJoin, which
// checks only `channelName[0] != '#'`. Channel names are case-sensitive.
func isValidChannel(c string) bool {
	return strings.HasPrefix(c, "#")
}
