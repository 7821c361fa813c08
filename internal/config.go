// Package internal holds the process configuration.
package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=3000"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	DiscordBotToken   string `env:"DISCORD_BOT_TOKEN"`
	DiscordChannelID  string `env:"DISCORD_CHANNEL_ID"`
	DiscordInviteLink string `env:"DISCORD_INVITE_LINK,default=https://discord.gg/6eBcNfD4Fn"`
	WebsiteURL        string `env:"WEBSITE_URL,default=https://haxball.com"`

	CensoredWords   string        `env:"CENSORED_WORDS"`
	CensoredChar    string        `env:"CENSORED_CHARACTER,default=*"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,default=./data/archive"`
	JWTSecret       string        `env:"JWT_SECRET,required=true"`
	AuthTokenExpiry time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
}

// CensoredWordList splits the comma-separated dictionary; empty entries are
// dropped so a trailing comma stays harmless.
func (c Config) CensoredWordList() []string {
	var words []string
	for _, w := range strings.Split(c.CensoredWords, ",") {
		if trimmed := strings.TrimSpace(w); trimmed != "" {
			words = append(words, trimmed)
		}
	}
	return words
}

// CensoredRune returns the single replacement character used by the censor.
func (c Config) CensoredRune() (rune, error) {
	r := []rune(c.CensoredChar)
	if len(r) != 1 {
		return 0, fmt.Errorf("CENSORED_CHARACTER must be a single character, got %q", c.CensoredChar)
	}
	return r[0], nil
}

// Address is the HTTP listen address.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
