package dispatch

import "strings"

func splitCommand(text string) (cmd string, rest string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}
	i := strings.IndexAny(text, " \n\t")
	if i == -1 {
		return text, ""
	}
	return text[:i], strings.TrimSpace(text[i:])
}

// normalizeSlashCommand returns the command name without slash, or "" when
// text is not a command.
func normalizeSlashCommand(cmd string) string {
	cmd = strings.TrimSpace(cmd)
	if len(cmd) < 2 || !strings.HasPrefix(cmd, "/") {
		return ""
	}
	// Allow "/cmd@BotName" variants by stripping "@...".
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(strings.TrimPrefix(cmd, "/"))
}

// ParseCommand splits an inbound text into command name and inline argument.
// name is "" for free text.
func ParseCommand(text string) (name string, args string) {
	head, rest := splitCommand(text)
	name = normalizeSlashCommand(head)
	if name == "" {
		return "", strings.TrimSpace(text)
	}
	return name, rest
}
