package types

import (
	"fmt"
	"strings"
)

// IssueKind identifies a class of problem detected in a file's content.
type IssueKind string

const (
	KindBinaryContent        IssueKind = "binary-content"
	KindOversizedBase64Block IssueKind = "oversized-base64-block"
	KindOversizedLine        IssueKind = "oversized-line"
	KindOversizedToken       IssueKind = "oversized-token"
	KindSecretFound          IssueKind = "secret-found"
	KindMinifiedContent      IssueKind = "minified-content"
)

// Issue is one detected problem on a file. The set of implementations is
// closed: BinaryContent, OversizedBase64Block, OversizedLine, OversizedToken,
// SecretFound and MinifiedContent. Fatal issues cause the file to be skipped;
// advisory issues only tag the record.
type Issue interface {
	Kind() IssueKind
	Fatal() bool
	Detail() string
}

// BinaryContent marks a file whose sampled bytes classify as binary.
type BinaryContent struct{}

func (BinaryContent) Kind() IssueKind { return KindBinaryContent }
func (BinaryContent) Fatal() bool     { return true }
func (BinaryContent) Detail() string  { return "content classified as binary" }

// OversizedBase64Block marks a base64-like run whose decoded-size estimate
// exceeds the configured ceiling.
type OversizedBase64Block struct {
	SizeKB int
	MaxKB  int
}

func (OversizedBase64Block) Kind() IssueKind { return KindOversizedBase64Block }
func (OversizedBase64Block) Fatal() bool     { return true }
func (i OversizedBase64Block) Detail() string {
	return fmt.Sprintf("base64 block ~%dKB exceeds limit %dKB", i.SizeKB, i.MaxKB)
}

// OversizedLine marks a single line longer than the configured maximum.
type OversizedLine struct {
	Length int
	Max    int
}

func (OversizedLine) Kind() IssueKind { return KindOversizedLine }
func (OversizedLine) Fatal() bool     { return true }
func (i OversizedLine) Detail() string {
	return fmt.Sprintf("line length %d exceeds limit %d", i.Length, i.Max)
}

// OversizedToken marks a whitespace-delimited token longer than the
// configured maximum.
type OversizedToken struct {
	Length int
	Max    int
}

func (OversizedToken) Kind() IssueKind { return KindOversizedToken }
func (OversizedToken) Fatal() bool     { return true }
func (i OversizedToken) Detail() string {
	return fmt.Sprintf("token length %d exceeds limit %d", i.Length, i.Max)
}

// SecretFound records the categories of secrets that were detected and
// redacted. Advisory: the file stays in the output with redacted content.
type SecretFound struct {
	Categories []string
}

func (SecretFound) Kind() IssueKind { return KindSecretFound }
func (SecretFound) Fatal() bool     { return false }
func (i SecretFound) Detail() string {
	return "secrets redacted: " + strings.Join(i.Categories, ", ")
}

// MinifiedContent marks content that looks machine-generated or minified.
// Advisory only.
type MinifiedContent struct{}

func (MinifiedContent) Kind() IssueKind { return KindMinifiedContent }
func (MinifiedContent) Fatal() bool     { return false }
func (MinifiedContent) Detail() string  { return "content appears minified" }

// FirstFatal returns the first fatal issue in the slice, or nil.
func FirstFatal(issues []Issue) Issue {
	for _, issue := range issues {
		if issue.Fatal() {
			return issue
		}
	}
	return nil
}
