package extraction

import (
	"errors"
	"testing"

	"genarrative/internal/services"
)

func TestSniffKindSignatures(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want ContentKind
	}{
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0}, KindImage},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0}, KindImage},
		{"gif", []byte("GIF89a......"), KindImage},
		{"webp", append([]byte("RIFF\x00\x00\x00\x00WEBP"), 0), KindImage},
		{"wav", append([]byte("RIFF\x00\x00\x00\x00WAVE"), 0), KindAudio},
		{"ogg", []byte("OggS........"), KindAudio},
		{"flac", []byte("fLaC........"), KindAudio},
		{"mp3 id3", []byte("ID3\x04......."), KindAudio},
		{"mp3 frame", []byte{0xFF, 0xFB, 0x90, 0x00}, KindAudio},
		{"plain text", []byte("The keeper watched the storm roll in.\n"), KindText},
		{"utf8 text", []byte("Der Leuchtturmwärter zündete die Lampe an."), KindText},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SniffKind(tc.data)
			if err != nil {
				t.Fatalf("SniffKind: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}

func TestSniffKindRejectsUnknownContent(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"binary noise", []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}},
		{"invalid utf8", []byte{0xC0, 0xC1, 0xF5, 0xFA}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SniffKind(tc.data)
			if !errors.Is(err, services.ErrUnknownContentKind) {
				t.Fatalf("expected unknown content kind, got %v", err)
			}
		})
	}
}

func TestParseContentKind(t *testing.T) {
	if kind, err := ParseContentKind(" Image "); err != nil || kind != KindImage {
		t.Fatalf("ParseContentKind: %v %v", kind, err)
	}
	if _, err := ParseContentKind("video"); !errors.Is(err, services.ErrUnknownContentKind) {
		t.Fatalf("expected unknown content kind, got %v", err)
	}
}
