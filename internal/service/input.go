package service

import (
	"strconv"
)

// InputKind tags a classified user message.
type InputKind int

const (
	InputText InputKind = iota
	InputDigit
)

func (k InputKind) String() string {
	if k == InputDigit {
		return "digit"
	}
	return "text"
}

// Input - 메시지 한 건을 한 번만 분류한 결과
//
// Text는 받은 그대로의 원문이다. Number는 Kind가 InputDigit일 때만 의미가 있고,
// 0으로 시작하는 숫자열("04")이나 int 범위를 넘는 숫자열은 0 (어떤 메뉴와도 맞지 않음)으로 둔다.
type Input struct {
	Kind   InputKind
	Number int
	Text   string
}

// ClassifyInput tags a message as a digit string or free text. Whitespace is not trimmed,
// so " 1" is text. Menu numbers match only their canonical form: "01" is a digit string
// that selects nothing.
func ClassifyInput(raw string) Input {
	if !isDigits(raw) {
		return Input{Kind: InputText, Text: raw}
	}
	return Input{Kind: InputDigit, Number: canonicalNumber(raw), Text: raw}
}

func canonicalNumber(s string) int {
	if len(s) > 1 && s[0] == '0' {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
