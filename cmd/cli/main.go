// talklog - KakaoTalk Chat Export Analyzer
//
// talklog parses exported KakaoTalk chat logs into typed records and
// reports descriptive statistics about the chatroom.
package main

import (
	"os"

	"github.com/talklog/talklog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
