package conversation

import (
	"strings"

	"github.com/jwgray1010/unsaid/pkg/types"
)

// senderPrefixes maps transcript line prefixes to senders. Matching is
// case-insensitive on the prefix before the first colon.
var senderPrefixes = map[string]types.Sender{
	"me":      types.SenderUser,
	"i":       types.SenderUser,
	"you":     types.SenderPartner,
	"them":    types.SenderPartner,
	"partner": types.SenderPartner,
}

// ParseTranscript builds a best-effort history from pasted surrounding text.
// Lines with a recognised "sender:" prefix keep that sender; unprefixed lines
// alternate starting from the partner, since the message being composed is the
// user's reply. Blank lines are skipped. The parser never fails; unusable
// input yields an empty history.
func ParseTranscript(text string) types.ConversationHistory {
	var history types.ConversationHistory

	next := types.SenderPartner
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		sender, body := splitSender(line)
		if sender == "" {
			sender = next
			body = line
		}

		history.Messages = append(history.Messages, types.ConversationMessage{
			Text:   body,
			Sender: sender,
		})

		if sender == types.SenderUser {
			next = types.SenderPartner
		} else {
			next = types.SenderUser
		}
	}

	return history
}

// splitSender extracts a recognised sender prefix from "name: body" lines.
// Returns an empty sender when the line has no recognised prefix.
func splitSender(line string) (types.Sender, string) {
	idx := strings.Index(line, ":")
	if idx <= 0 || idx > 12 {
		return "", line
	}

	name := strings.ToLower(strings.TrimSpace(line[:idx]))
	sender, ok := senderPrefixes[name]
	if !ok {
		return "", line
	}
	return sender, strings.TrimSpace(line[idx+1:])
}
