package charts

import (
	"context"
	"fmt"

	"github.com/yungbote/vizboard-backend/internal/pkg/logger"
)

// Completer is the single seam to the model backend. Anything that can
// turn a prompt into text can drive the pipeline.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type FailureCode string

const (
	FailModelUnavailable FailureCode = "model_unavailable"
	FailUnparsable       FailureCode = "unparsable_response"
	FailNoValidCharts    FailureCode = "no_valid_charts"
)

// Failure is the pipeline's terminal error. Code tells the caller which
// stage gave up; Snippet carries a bounded excerpt of the raw model
// output for unparsable responses; Dropped holds the per-candidate
// post-repair violations when every candidate was rejected.
type Failure struct {
	Code    FailureCode
	Snippet string
	Dropped []DroppedCandidate
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("chart generation failed (%s): %v", f.Code, f.Err)
	}
	return fmt.Sprintf("chart generation failed (%s)", f.Code)
}

func (f *Failure) Unwrap() error { return f.Err }

// DroppedCandidate records why a candidate never made it to the result.
// Violations are the ones remaining after the repair pass; Repairs
// names the repair rules that fired before the candidate still failed.
type DroppedCandidate struct {
	Index      int
	Violations []Violation
	Repairs    []string
}

// Result is the successful (possibly partial) outcome. Dropped is
// non-empty when some candidates were rejected but at least one chart
// survived; callers surface it as diagnostics, not as an error.
type Result struct {
	Charts      []ChartConfig
	Explanation string
	Dropped     []DroppedCandidate
}

// Pipeline runs model output through extraction, validation, a single
// repair pass, re-validation, and theming. It holds no per-request
// state and is safe for concurrent use.
type Pipeline struct {
	llm       Completer
	validator *Validator
	repairer  *Repairer
	prompts   *PromptBuilder
	theme     Theme
	rules     Rules
	log       *logger.Logger
}

func NewPipeline(llm Completer, cfg Config, log *logger.Logger) *Pipeline {
	return &Pipeline{
		llm:       llm,
		validator: NewValidator(),
		repairer:  NewRepairer(&cfg.Rules),
		prompts:   NewPromptBuilder(&cfg.Rules),
		theme:     cfg.Theme,
		rules:     cfg.Rules,
		log:       log,
	}
}

// Generate builds the prompt, calls the model, and normalizes whatever
// comes back. A transport or model error maps to FailModelUnavailable;
// everything after the call is Process.
func (p *Pipeline) Generate(ctx context.Context, dataSummary, userInstruction string) (*Result, error) {
	prompt := p.prompts.Build(dataSummary, userInstruction, nil)
	raw, err := p.llm.Complete(ctx, prompt)
	if err != nil {
		p.log.Warn("model completion failed", "error", err)
		return nil, &Failure{Code: FailModelUnavailable, Err: err}
	}
	return p.Process(raw)
}

// Process normalizes raw model text into themed chart configs. It is
// exposed separately so stored raw responses can be re-normalized
// without another model call.
func (p *Pipeline) Process(raw string) (*Result, error) {
	ext, err := ExtractCandidates(raw)
	if err != nil {
		p.log.Warn("unparsable model output", "bytes", len(raw))
		return nil, &Failure{Code: FailUnparsable, Snippet: snippet(raw), Err: err}
	}

	candidates := ext.Candidates
	if p.rules.MaxCharts > 0 && len(candidates) > p.rules.MaxCharts {
		p.log.Warn("candidate count over limit, truncating",
			"count", len(candidates), "limit", p.rules.MaxCharts)
		candidates = candidates[:p.rules.MaxCharts]
	}

	result := &Result{Explanation: ext.Explanation}
	for i, candidate := range candidates {
		cfg, dropped := p.normalizeOne(i, candidate)
		if dropped != nil {
			result.Dropped = append(result.Dropped, *dropped)
			continue
		}
		result.Charts = append(result.Charts, p.theme.Apply(*cfg))
	}

	if len(result.Charts) == 0 {
		return nil, &Failure{Code: FailNoValidCharts, Dropped: result.Dropped}
	}
	if len(result.Dropped) > 0 {
		p.log.Info("partial chart normalization",
			"accepted", len(result.Charts), "dropped", len(result.Dropped))
	}
	return result, nil
}

func (p *Pipeline) normalizeOne(index int, candidate any) (*ChartConfig, *DroppedCandidate) {
	res := p.validator.Validate(candidate)
	if res.Valid() {
		return res.Config, nil
	}

	repaired, applied := p.repairer.Repair(candidate)
	res = p.validator.Validate(repaired)
	if res.Valid() {
		if len(applied) > 0 {
			p.log.Debug("candidate repaired", "index", index, "rules", applied)
		}
		return res.Config, nil
	}

	p.log.Debug("candidate dropped", "index", index, "violations", len(res.Violations))
	return nil, &DroppedCandidate{
		Index:      index,
		Violations: res.Violations,
		Repairs:    applied,
	}
}

const snippetLimit = 240

func snippet(raw string) string {
	if len(raw) <= snippetLimit {
		return raw
	}
	cut := snippetLimit
	for cut > 0 && raw[cut]&0xC0 == 0x80 {
		cut--
	}
	return raw[:cut] + "..."
}
