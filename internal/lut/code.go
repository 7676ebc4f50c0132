package lut

import "strings"

// Message is the text keyed by the question mark shape.
const Message = "CQ CQ DE VCO"

// Code is Message as a stream of 2-bit Morse symbols, four per byte, least
// significant first. Symbols alternate between key down and key up, starting
// key down. A symbol v lasts (2<<v)-1 dits; v = 3 ends the stream.
var Code []uint8

var morse = map[rune]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".", 'F': "..-.",
	'G': "--.", 'H': "....", 'I': "..", 'J': ".---", 'K': "-.-", 'L': ".-..",
	'M': "--", 'N': "-.", 'O': "---", 'P': ".--.", 'Q': "--.-", 'R': ".-.",
	'S': "...", 'T': "-", 'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-",
	'Y': "-.--", 'Z': "--..",
	'0': "-----", '1': ".----", '2': "..---", '3': "...--", '4': "....-",
	'5': ".....", '6': "-....", '7': "--...", '8': "---..", '9': "----.",
}

const (
	symDit  = 0 // 1 unit
	symDah  = 1 // 3 units
	symWord = 2 // 7 units
	symEnd  = 3
)

func encodeMorse(msg string) []uint8 {
	var syms []uint8
	words := strings.Fields(strings.ToUpper(msg))
	for w, word := range words {
		letters := []rune(word)
		for l, r := range letters {
			code := morse[r]
			for e, c := range code {
				if c == '-' {
					syms = append(syms, symDah)
				} else {
					syms = append(syms, symDit)
				}
				switch {
				case e < len(code)-1:
					syms = append(syms, symDit)
				case l < len(letters)-1:
					syms = append(syms, symDah)
				case w < len(words)-1:
					syms = append(syms, symWord)
				}
			}
		}
	}
	// Closing silence, then the end marker.
	syms = append(syms, symWord, symEnd)

	out := make([]uint8, (len(syms)+3)/4)
	for i, s := range syms {
		out[i>>2] |= s << ((i & 3) << 1)
	}
	return out
}

func initCode() {
	Code = encodeMorse(Message)
}
