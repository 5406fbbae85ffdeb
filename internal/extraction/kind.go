package extraction

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"genarrative/internal/services"
)

// ContentKind names the media signature of raw input content.
type ContentKind string

const (
	KindText  ContentKind = "text"
	KindImage ContentKind = "image"
	KindAudio ContentKind = "audio"
)

// ParseContentKind converts a declared kind string.
func ParseContentKind(value string) (ContentKind, error) {
	normalized := ContentKind(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case KindText, KindImage, KindAudio:
		return normalized, nil
	}
	return "", services.Wrap(services.ErrUnknownContentKind, "extraction", "parse kind",
		fmt.Sprintf("unknown content kind %q", value), nil)
}

var (
	pngMagic  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	gifMagic  = []byte("GIF8")
	riffMagic = []byte("RIFF")
	oggMagic  = []byte("OggS")
	flacMagic = []byte("fLaC")
	id3Magic  = []byte("ID3")
)

// SniffKind infers the content kind from the content's own signature.
// Filename heuristics are deliberately not consulted; a mislabeled or
// corrupt file must fail here explicitly instead of being guessed at.
func SniffKind(data []byte) (ContentKind, error) {
	if len(data) == 0 {
		return "", services.Wrap(services.ErrUnknownContentKind, "extraction", "sniff kind", "empty content", nil)
	}

	switch {
	case bytes.HasPrefix(data, pngMagic),
		bytes.HasPrefix(data, jpegMagic),
		bytes.HasPrefix(data, gifMagic),
		isWebP(data):
		return KindImage, nil
	case isWAV(data),
		bytes.HasPrefix(data, oggMagic),
		bytes.HasPrefix(data, flacMagic),
		bytes.HasPrefix(data, id3Magic),
		isMP3Frame(data):
		return KindAudio, nil
	}

	if looksLikeText(data) {
		return KindText, nil
	}

	return "", services.Wrap(services.ErrUnknownContentKind, "extraction", "sniff kind",
		"content matches no known media signature", nil)
}

func isWAV(data []byte) bool {
	return len(data) >= 12 && bytes.HasPrefix(data, riffMagic) && bytes.Equal(data[8:12], []byte("WAVE"))
}

func isWebP(data []byte) bool {
	return len(data) >= 12 && bytes.HasPrefix(data, riffMagic) && bytes.Equal(data[8:12], []byte("WEBP"))
}

func isMP3Frame(data []byte) bool {
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

// looksLikeText accepts valid UTF-8 without NUL bytes or control-code
// noise. The sample is capped so large files stay cheap to classify.
func looksLikeText(data []byte) bool {
	sample := data
	const sampleLimit = 8 * 1024
	if len(sample) > sampleLimit {
		sample = sample[:sampleLimit]
		// Avoid judging a rune split by the cap.
		for i := 0; i < utf8.UTFMax-1 && len(sample) > 0 && !utf8.Valid(sample); i++ {
			sample = sample[:len(sample)-1]
		}
	}
	if !utf8.Valid(sample) {
		return false
	}
	control := 0
	for _, r := range string(sample) {
		if r == 0 {
			return false
		}
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			control++
		}
	}
	return control*50 < len(sample)+1
}
