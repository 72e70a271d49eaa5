package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gasops/mtr-extract/internal/docintel"
	"github.com/gasops/mtr-extract/internal/fields"
	"github.com/gasops/mtr-extract/internal/jsontext"
	"github.com/gasops/mtr-extract/internal/llm"
	"github.com/gasops/mtr-extract/internal/template"
)

// Stage names the fallback level that produced a document.
type Stage string

const (
	StageAIFill    Stage = "ai_fill"
	StageOverlay   Stage = "overlay"
	StageHeuristic Stage = "heuristic"
	StageTemplate  Stage = "template"
)

// Result is one processed document plus the stage that produced it. Document
// is always non-nil; the worst case is the untouched cleaned template.
type Result struct {
	Document map[string]any
	Stage    Stage
	Text     string
	Tables   []docintel.Table
}

// Processor drives the layered extraction chain for a single document:
// full AI template-fill first, deterministic overlay of the located payload
// next, heuristic classification last. External failures at any stage degrade
// to the next stage instead of aborting.
type Processor struct {
	analysis   docintel.AnalysisClient
	completion llm.CompletionClient
	template   map[string]any
	maxTokens  int
	log        *slog.Logger
}

func NewProcessor(analysis docintel.AnalysisClient, completion llm.CompletionClient, tmpl map[string]any, maxTokens int, logger *slog.Logger) *Processor {
	if tmpl == nil {
		tmpl = template.Fallback()
	}
	if maxTokens <= 0 {
		maxTokens = 4000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		analysis:   analysis,
		completion: completion,
		template:   tmpl,
		maxTokens:  maxTokens,
		log:        logger,
	}
}

// Process runs the full chain for one document. The returned Result always
// carries a template-shaped document; it never returns an error for
// degradation, only a lower Stage.
func (p *Processor) Process(ctx context.Context, doc []byte, contentType, sourceName string) Result {
	rid := uuid.New().String()
	start := time.Now()
	p.log.Info("pipeline.process.start", "req_id", rid, "source", sourceName, "bytes", len(doc))

	var text string
	var tables []docintel.Table
	var analysisResult map[string]any

	if p.analysis != nil {
		result, err := p.analysis.Analyze(ctx, doc, contentType)
		if err != nil {
			p.log.Warn("pipeline.analysis.unusable", "req_id", rid, "error", err)
		} else {
			analysisResult = result
			text = docintel.ExtractText(result)
			tables = docintel.ExtractTables(result)
		}
	}
	p.log.Info("pipeline.analysis.done",
		"req_id", rid, "text_len", len(text), "tables", len(tables))

	res := p.reconcile(ctx, rid, analysisResult, text, tables, sourceName)
	res.Text = text
	res.Tables = tables

	p.log.Info("pipeline.process.done",
		"req_id", rid,
		"stage", string(res.Stage),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}

func (p *Processor) reconcile(ctx context.Context, rid string, analysisResult map[string]any, text string, tables []docintel.Table, sourceName string) Result {
	if doc, ok := p.tryFullAIFill(ctx, rid, text); ok {
		return Result{Document: doc, Stage: StageAIFill}
	}

	overlaid, overlayHit := p.tryOverlay(rid, analysisResult)

	selected, catUsable := p.categorizeTables(ctx, rid, tables)
	if catUsable && len(selected) > 0 && overlayHit {
		return Result{Document: overlaid, Stage: StageOverlay}
	}

	classifierTables := selected
	if len(classifierTables) == 0 {
		classifierTables = tables
	}
	if doc, ok := p.tryHeuristic(ctx, rid, classifierTables, text, sourceName); ok {
		return Result{Document: doc, Stage: StageHeuristic}
	}

	if overlayHit {
		return Result{Document: overlaid, Stage: StageOverlay}
	}
	return Result{Document: deepCopyObject(p.template), Stage: StageTemplate}
}

// tryFullAIFill sends the cleaned template and the whole extracted text in a
// single prompt. Unusable means: no completion client, empty text, call
// failure, or a response that does not contain a JSON object.
func (p *Processor) tryFullAIFill(ctx context.Context, rid, text string) (map[string]any, bool) {
	if p.completion == nil || text == "" {
		return nil, false
	}
	content, err := p.completion.Complete(ctx, llm.TemplateFillMessages(p.template, text), p.maxTokens)
	if err != nil {
		p.log.Warn("pipeline.ai_fill.unusable", "req_id", rid, "error", err)
		return nil, false
	}
	parsed, ok := jsontext.FindJSON(content)
	if !ok {
		p.log.Warn("pipeline.ai_fill.unusable", "req_id", rid, "reason", "no json in response")
		return nil, false
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		p.log.Warn("pipeline.ai_fill.unusable", "req_id", rid, "reason", "response not an object")
		return nil, false
	}
	p.log.Info("pipeline.ai_fill.ok", "req_id", rid, "keys", len(obj))
	return obj, true
}

// tryOverlay locates the extraction payload inside the raw analysis result
// and merges it onto the template. Mechanical, never fails; reports whether a
// payload was found at all.
func (p *Processor) tryOverlay(rid string, analysisResult map[string]any) (map[string]any, bool) {
	if analysisResult == nil {
		return nil, false
	}
	payload, ok := jsontext.ExtractPayload(analysisResult)
	if !ok {
		p.log.Info("pipeline.overlay.no_payload", "req_id", rid)
		return nil, false
	}
	merged, ok := template.Overlay(p.template, payload).(map[string]any)
	if !ok {
		return nil, false
	}
	p.log.Info("pipeline.overlay.ok", "req_id", rid)
	return merged, true
}

// categorizeTables asks the completion service to sort extracted tables into
// chemical/material/other and returns the chemical+material selection. An
// unusable categorization returns (nil, false) so the caller can fall through
// to the heuristic path.
func (p *Processor) categorizeTables(ctx context.Context, rid string, tables []docintel.Table) ([]docintel.Table, bool) {
	if p.completion == nil || len(tables) == 0 {
		return nil, false
	}
	content, err := p.completion.Complete(ctx, llm.TableCategorizeMessages(tables), 3000)
	if err != nil {
		p.log.Warn("pipeline.categorize.unusable", "req_id", rid, "error", err)
		return nil, false
	}
	parsed, ok := jsontext.FindJSON(content)
	if !ok {
		p.log.Warn("pipeline.categorize.unusable", "req_id", rid, "reason", "no json in response")
		return nil, false
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, false
	}

	selected := decodeBuckets(obj)
	p.log.Info("pipeline.categorize.ok", "req_id", rid, "selected", len(selected))
	return selected, true
}

// generateTables asks the model to organize the raw text into chemical and
// material tables when the layout pass produced none. The response uses the
// same bucketed shape as the categorizer, so an unusable response simply
// yields no tables.
func (p *Processor) generateTables(ctx context.Context, rid, text string) []docintel.Table {
	content, err := p.completion.Complete(ctx, llm.TableGenerateMessages(text), 3000)
	if err != nil {
		p.log.Warn("pipeline.generate_tables.unusable", "req_id", rid, "error", err)
		return nil
	}
	parsed, ok := jsontext.FindJSON(content)
	if !ok {
		p.log.Warn("pipeline.generate_tables.unusable", "req_id", rid, "reason", "no json in response")
		return nil
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil
	}
	generated := decodeBuckets(obj)
	p.log.Info("pipeline.generate_tables.ok", "req_id", rid, "tables", len(generated))
	return generated
}

// decodeBuckets collects the tables under the chemical and material keys of a
// bucketed model response; the other bucket is never fed to the classifier.
func decodeBuckets(obj map[string]any) []docintel.Table {
	var out []docintel.Table
	for _, bucket := range []string{"chemical", "material"} {
		raw, ok := obj[bucket].([]any)
		if !ok {
			continue
		}
		for _, entry := range raw {
			if tbl, ok := decodeTable(entry); ok {
				out = append(out, tbl)
			}
		}
	}
	return out
}

// tryHeuristic runs the properties-extraction prompt over the raw text,
// converts each returned property into a two-column table row, and feeds
// everything through the regex/keyword classifier into the template. When the
// layout pass detected no tables at all, the model is first asked to build
// tables from the text.
func (p *Processor) tryHeuristic(ctx context.Context, rid string, tables []docintel.Table, text, sourceName string) (map[string]any, bool) {
	if text == "" && len(tables) == 0 {
		return nil, false
	}

	all := make([]docintel.Table, 0, len(tables)+8)
	all = append(all, tables...)
	if p.completion != nil && text != "" {
		if len(all) == 0 {
			all = append(all, p.generateTables(ctx, rid, text)...)
		}
		if props := p.extractProperties(ctx, rid, text); len(props) > 0 {
			all = append(all, propertiesAsTables(props)...)
		}
	}

	data := fields.ExtractFields(all, text)
	doc := fields.PopulateTemplate(p.template, data, sourceName)
	p.log.Info("pipeline.heuristic.ok",
		"req_id", rid,
		"chemical", len(data.ChemicalComposition),
		"tensile", len(data.TensileProperties),
		"general", len(data.GeneralInfo),
	)
	return doc, true
}

func (p *Processor) extractProperties(ctx context.Context, rid, text string) []llm.ExtractedProperty {
	content, err := p.completion.Complete(ctx, llm.PropertiesMessages(text), 2000)
	if err != nil {
		p.log.Warn("pipeline.properties.unusable", "req_id", rid, "error", err)
		return nil
	}
	parsed, ok := jsontext.FindJSON(content)
	if !ok {
		p.log.Warn("pipeline.properties.unusable", "req_id", rid, "reason", "no json in response")
		return nil
	}
	raw, err := json.Marshal(parsed)
	if err != nil {
		return nil
	}
	props, err := llm.ParseProperties(raw)
	if err != nil {
		p.log.Warn("pipeline.properties.invalid", "req_id", rid, "error", err)
		return nil
	}
	return props
}

// propertiesAsTables reshapes flat property records into two-column tables so
// the row classifier can consume them unchanged.
func propertiesAsTables(props []llm.ExtractedProperty) []docintel.Table {
	out := make([]docintel.Table, 0, len(props))
	for _, prop := range props {
		out = append(out, docintel.Table{
			Headers: []string{"Property", "Value"},
			Rows:    [][]string{{prop.Property, prop.Value}},
		})
	}
	return out
}

// decodeTable accepts either the classifier's own Table shape or the model's
// loose {table_name, headers, rows} variant.
func decodeTable(entry any) (docintel.Table, bool) {
	obj, ok := entry.(map[string]any)
	if !ok {
		return docintel.Table{}, false
	}
	var tbl docintel.Table
	if name, ok := obj["table_name"].(string); ok {
		tbl.TableID = name
	} else if id, ok := obj["table_id"].(string); ok {
		tbl.TableID = id
	}
	if section, ok := obj["section"].(string); ok {
		tbl.Section = section
	}
	if o, ok := obj["orientation"].(string); ok {
		tbl.Orientation = o
	}
	if headers, ok := obj["headers"].([]any); ok {
		for _, h := range headers {
			s, _ := h.(string)
			tbl.Headers = append(tbl.Headers, s)
		}
	}
	if rows, ok := obj["rows"].([]any); ok {
		for _, r := range rows {
			cells, ok := r.([]any)
			if !ok {
				continue
			}
			row := make([]string, 0, len(cells))
			for _, c := range cells {
				s, _ := c.(string)
				row = append(row, s)
			}
			tbl.Rows = append(tbl.Rows, row)
		}
	}
	if len(tbl.Headers) == 0 && len(tbl.Rows) == 0 {
		return docintel.Table{}, false
	}
	return tbl, true
}

func deepCopyObject(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case map[string]any:
			out[k] = deepCopyObject(t)
		case []any:
			cp := make([]any, len(t))
			for i, e := range t {
				if em, ok := e.(map[string]any); ok {
					cp[i] = deepCopyObject(em)
				} else {
					cp[i] = e
				}
			}
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}
