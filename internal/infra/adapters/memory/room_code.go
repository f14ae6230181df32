package memory

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// RoomCodeLength - длина кода комнаты, которым делятся игроки
	RoomCodeLength = 6

	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// CodeGenerator выдаёт код комнаты заданной длины
type CodeGenerator func(size int) string

// NanoidCode - коды в верхнем регистре, 36^6 ≈ 2.2 млрд вариантов
func NanoidCode(size int) string {
	return gonanoid.MustGenerate(roomCodeAlphabet, size)
}
