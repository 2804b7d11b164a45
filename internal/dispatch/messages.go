package dispatch

import (
	"fmt"

	"github.com/quailyquaily/text2cw/internal/settings"
)

const (
	msgNotJoined = "You don't exist, go away!\nUse /start to join"
	msgUnknown   = "Sorry, this is something I can't understand"
	msgLeave     = "Ok - leaving value unchanged"
	msgBye       = "Bye bye\nremember you can use /start to join us again"
)

var helpIntro = []string{
	"I can convert text to cw (Morse) audio",
	"Just send me a message and I'll answer with the audio file",
	"You can change speed, tone, noise, file name and more using commands",
	"",
	"I can understand these commands:",
}

func answerOrLeave(command string) string {
	return fmt.Sprintf("Please answer the /%s question or use /leave to keep the current value", command)
}

func migrationNotice(r *settings.Registry, key string) string {
	s, _ := r.Lookup(key)
	return fmt.Sprintf("New setting %s, set to %s\nUse /%s to change it", key, displayValue(s.Default), key)
}

func displayValue(v string) string {
	if v == "" {
		return settings.None
	}
	return v
}
