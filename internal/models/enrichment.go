package models

// Enrichment is the generated bilingual copy for a tool. The required text fields are
// always populated; the enricher substitutes degraded placeholders when generation fails.
type Enrichment struct {
	TitleZh   string   `json:"title_zh" validate:"required"`
	TitleEn   string   `json:"title_en"`
	SummaryZh string   `json:"summary_zh"`
	SummaryEn string   `json:"summary_en"`
	CoreValue string   `json:"coreValue,omitempty"`
	UseCases  string   `json:"useCases,omitempty"`
	ProsCons  string   `json:"prosCons,omitempty"`
	AIScore   *float64 `json:"aiScore,omitempty"`
	ContentZh string   `json:"content_zh"`
	ContentEn string   `json:"content_en"`
}

// Complete reports whether every required text field has a value.
func (e Enrichment) Complete() bool {
	for _, v := range []string{e.TitleZh, e.TitleEn, e.SummaryZh, e.SummaryEn, e.ContentZh, e.ContentEn} {
		if v == "" {
			return false
		}
	}
	return true
}

// DeepEnrichment is the long-form review produced from homepage text and search context.
type DeepEnrichment struct {
	SummaryZh string `json:"summary_zh"`
	SummaryEn string `json:"summary_en"`
	CoreValue string `json:"coreValue"`
	UseCases  string `json:"useCases"`
	ProsCons  string `json:"prosCons"`
	ContentZh string `json:"content_zh"`
	ContentEn string `json:"content_en"`
}

// Empty reports whether the model returned nothing usable.
func (d DeepEnrichment) Empty() bool {
	return d.SummaryZh == "" && d.SummaryEn == "" && d.CoreValue == "" &&
		d.UseCases == "" && d.ProsCons == "" && d.ContentZh == "" && d.ContentEn == ""
}

// MediaAsset pairs an external media reference with its copy in owned storage.
// StoredURL is empty when the source was empty or relocation failed.
type MediaAsset struct {
	SourceRef string `json:"source_ref"`
	StoredURL string `json:"stored_url,omitempty"`
}
