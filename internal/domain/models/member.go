package models

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultDisplayName = "Player"
	maxDisplayNameLen  = 24
)

type Member struct {
	ConnID      string
	DisplayName string
	Ready       bool
}

func NewMember(connID, name string) *Member {
	return &Member{
		ConnID:      connID,
		DisplayName: NormalizeDisplayName(name),
	}
}

// NormalizeDisplayName обрезает пробелы и длину имени, пустое имя заменяется на DefaultDisplayName
func NormalizeDisplayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultDisplayName
	}

	if utf8.RuneCountInString(name) > maxDisplayNameLen {
		name = string([]rune(name)[:maxDisplayNameLen])
	}

	return name
}
