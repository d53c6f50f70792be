// Package inspect classifies file content before it is accepted into the
// output: binary detection over a byte sample, a minified-content heuristic,
// and oversized base64/line/token checks.
package inspect

import (
	"bytes"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/promptpack/promptpack/pkg/types"
)

const (
	// DefaultSampleSize is how many leading bytes the binary check examines.
	DefaultSampleSize = 1024

	// binaryCacheSize bounds the per-run binary-verdict cache so very large
	// trees cannot grow it without limit.
	binaryCacheSize = 4096

	// controlByteRatio is the fraction of non-text bytes in the sample above
	// which content is classified as binary.
	controlByteRatio = 0.30
)

// Inspector runs content checks against configured limits. The binary
// verdict cache is scoped to the Inspector, which is scoped to one run;
// runs never share state.
type Inspector struct {
	limits      types.Limits
	sampleSize  int
	binaryCache *lru.Cache[string, bool]
}

// New creates an Inspector for one run.
func New(limits types.Limits) (*Inspector, error) {
	cache, err := lru.New[string, bool](binaryCacheSize)
	if err != nil {
		return nil, err
	}
	return &Inspector{
		limits:      limits,
		sampleSize:  DefaultSampleSize,
		binaryCache: cache,
	}, nil
}

// IsBinary reports whether content classifies as binary, caching the verdict
// per absolute path for the run.
func (i *Inspector) IsBinary(absPath string, content []byte) bool {
	if verdict, ok := i.binaryCache.Get(absPath); ok {
		return verdict
	}
	verdict := classifyBinary(content, i.sampleSize)
	i.binaryCache.Add(absPath, verdict)
	return verdict
}

// Inspect runs every content check and returns the detected issues. Binary
// detection is expected to have run already; Inspect only handles text.
func (i *Inspector) Inspect(relPath string, content []byte) []types.Issue {
	var issues []types.Issue

	if issue := checkBase64Blocks(content, i.limits.MaxBase64BlockKB); issue != nil {
		issues = append(issues, issue)
	}
	if issue := checkLineLength(content, i.limits.MaxLineLength); issue != nil {
		issues = append(issues, issue)
	}
	if issue := checkTokenLength(content, i.limits.MaxTokenLength); issue != nil {
		issues = append(issues, issue)
	}
	if isMinified(relPath, content) {
		issues = append(issues, types.MinifiedContent{})
	}
	return issues
}

// classifyBinary samples the first sampleSize bytes. Any null byte means
// binary. Otherwise content is binary when control bytes (excluding tab,
// newline and carriage return) plus bytes above 126 exceed 30% of the
// sample.
func classifyBinary(content []byte, sampleSize int) bool {
	if len(content) == 0 {
		return false
	}
	sample := content
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	if bytes.IndexByte(sample, 0) != -1 {
		return true
	}

	suspect := 0
	for _, b := range sample {
		if b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		if b < 32 || b > 126 {
			suspect++
		}
	}
	return float64(suspect)/float64(len(sample)) > controlByteRatio
}
