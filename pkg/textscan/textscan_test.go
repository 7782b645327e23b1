package textscan

import (
	"reflect"
	"testing"
)

func TestScanOrdersByFrequency(t *testing.T) {
	res := Scan("The cat saw the dog. The dog didn't care; well-known cats.")

	if res.WordsCount != 11 {
		t.Fatalf("expected 11 words, got %d", res.WordsCount)
	}
	if res.UniqueCount != 8 {
		t.Fatalf("expected 8 unique words, got %d", res.UniqueCount)
	}

	var got []string
	for _, w := range res.Words {
		got = append(got, w.Word)
	}
	want := []string{"the", "dog", "care", "cat", "cats", "didn't", "saw", "well-known"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if first := res.Words[0].Spans[0]; res.Text[first.Start:first.End] != "The" {
		t.Fatalf("unexpected span %+v", first)
	}
}

func TestScanUnicode(t *testing.T) {
	res := Scan("Привет, мир! привет")
	if len(res.Words) != 2 || res.Words[0].Word != "привет" || len(res.Words[0].Spans) != 2 {
		t.Fatalf("unexpected words %+v", res.Words)
	}
	span := res.Words[0].Spans[1]
	if res.Text[span.Start:span.End] != "привет" {
		t.Fatalf("span does not cover word: %q", res.Text[span.Start:span.End])
	}
	if ctx := res.Context(span, 5); ctx == "" {
		t.Fatalf("expected context around %+v", span)
	}
}

func TestScanSRT(t *testing.T) {
	srt := "1\r\n00:00:01,000 --> 00:00:02,000\r\nHello there\r\n\r\n" +
		"2\n00:00:03,000 --> 00:00:04,500\nGeneral Kenobi\nhello\n"
	cues, err := ParseSRT(srt)
	if err != nil {
		t.Fatalf("ParseSRT returned error: %v", err)
	}
	if len(cues) != 2 || cues[1].Text != "General Kenobi\nhello" || cues[0].End != "00:00:02,000" {
		t.Fatalf("unexpected cues %+v", cues)
	}

	res, err := ScanSRT(srt)
	if err != nil {
		t.Fatalf("ScanSRT returned error: %v", err)
	}
	if res.Words[0].Word != "hello" || res.WordsCount != 5 {
		t.Fatalf("unexpected scan %+v", res)
	}
	for _, w := range res.Words {
		if w.Word == "00" {
			t.Fatalf("timing leaked into words")
		}
	}
}

func TestParseSRTRejectsMalformed(t *testing.T) {
	if _, err := ParseSRT("one\n00:00 --> 00:01\ntext\n"); err == nil {
		t.Fatalf("expected error for non-numeric index")
	}
	if _, err := ParseSRT("1\nno timing here\n"); err == nil {
		t.Fatalf("expected error for malformed timing")
	}
}
