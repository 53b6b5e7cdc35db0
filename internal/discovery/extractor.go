package discovery

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/rawhoneyguide/honeyscout/internal/models"
)

// Extractor pulls event candidates out of generation output.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an extractor that logs unparsable blocks to logger.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns the candidates found across all blocks, in block order.
//
// tool_use blocks for the report tool are decoded directly. When any such
// block is present, text blocks are ignored since models often echo the same
// array in prose. Otherwise text blocks are searched for the substring between
// the first '[' and the last ']', which is parsed as a JSON array. A block
// that fails to parse contributes nothing; the failure is logged and never
// returned as an error.
func (e *Extractor) Extract(blocks []ContentBlock) []models.Candidate {
	var candidates []models.Candidate
	structured := hasReportTool(blocks)

	for i, block := range blocks {
		switch block.Type {
		case BlockTypeToolUse:
			if block.Name != ReportToolName {
				continue
			}
			var input struct {
				Events []models.Candidate `json:"events"`
			}
			if err := json.Unmarshal(block.Input, &input); err != nil {
				e.logger.Warn("failed to parse tool input", "block", i, "error", err)
				continue
			}
			candidates = append(candidates, input.Events...)

		case BlockTypeText:
			if structured {
				continue
			}
			parsed, ok := e.parseTextBlock(i, block.Text)
			if ok {
				candidates = append(candidates, parsed...)
			}
		}
	}

	return candidates
}

func hasReportTool(blocks []ContentBlock) bool {
	for _, block := range blocks {
		if block.Type == BlockTypeToolUse && block.Name == ReportToolName {
			return true
		}
	}
	return false
}

func (e *Extractor) parseTextBlock(index int, text string) ([]models.Candidate, bool) {
	raw, found := ExtractJSONArray(text)
	if !found {
		return nil, false
	}

	var parsed []models.Candidate
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		e.logger.Warn("failed to parse JSON from response", "block", index, "error", err)
		return nil, false
	}
	return parsed, true
}

// ExtractJSONArray returns the text from the first '[' through the last ']'.
func ExtractJSONArray(text string) (string, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}
