package models

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Tool statuses used by the repair cycle.
const (
	ToolStatusOffline = "OFFLINE"
)

// ToolPayload is the body of POST /tools.
type ToolPayload struct {
	Enrichment

	URL            string  `json:"url" validate:"required,url"`
	Logo           string  `json:"logo,omitempty"`
	VideoURL       string  `json:"videoUrl,omitempty"`
	ScreenshotURL  string  `json:"screenshotUrl,omitempty"`
	CategoryNameZh string  `json:"categoryName_zh" validate:"required"`
	CategoryNameEn string  `json:"categoryName_en"`
	CategorySlug   string  `json:"categorySlug" validate:"required"`
	Region         string  `json:"region"`
	IsHot          bool    `json:"isHot"`
	Rate           float64 `json:"rate" validate:"gte=0,lte=5"`
	Source         string  `json:"source,omitempty"`
}

// RepairRecord is an already stored tool that the API reports as incomplete.
type RepairRecord struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	TitleZh       string `json:"title_zh"`
	TitleEn       string `json:"title_en"`
	SummaryZh     string `json:"summary_zh,omitempty"`
	SummaryEn     string `json:"summary_en,omitempty"`
	ScreenshotURL string `json:"screenshotUrl,omitempty"`
	Status        string `json:"status"`
}

// DisplayName prefers the English title, as the healer logs and searches with it.
func (r RepairRecord) DisplayName() string {
	if r.TitleEn != "" {
		return r.TitleEn
	}
	return r.TitleZh
}

// PatchPayload is the body of PATCH /tools/enrich. Only set fields are serialised, so a
// failed attempt never overwrites existing data with blanks.
type PatchPayload struct {
	ID            string `json:"id"`
	Status        string `json:"status,omitempty"`
	ScreenshotURL string `json:"screenshotUrl,omitempty"`
	SummaryZh     string `json:"summary_zh,omitempty"`
	SummaryEn     string `json:"summary_en,omitempty"`
	CoreValue     string `json:"coreValue,omitempty"`
	UseCases      string `json:"useCases,omitempty"`
	ProsCons      string `json:"prosCons,omitempty"`
	ContentZh     string `json:"content_zh,omitempty"`
	ContentEn     string `json:"content_en,omitempty"`
}

// ChangedFields lists the JSON names of the non-id fields that are set.
func (p PatchPayload) ChangedFields() []string {
	var fields []string
	add := func(name, v string) {
		if v != "" {
			fields = append(fields, name)
		}
	}
	add("status", p.Status)
	add("screenshotUrl", p.ScreenshotURL)
	add("summary_zh", p.SummaryZh)
	add("summary_en", p.SummaryEn)
	add("coreValue", p.CoreValue)
	add("useCases", p.UseCases)
	add("prosCons", p.ProsCons)
	add("content_zh", p.ContentZh)
	add("content_en", p.ContentEn)
	return fields
}

// HasChanges reports whether the patch carries anything besides the id.
func (p PatchPayload) HasChanges() bool {
	return len(p.ChangedFields()) > 0
}

// Merge copies the non-empty deep enrichment fields into the patch.
func (p *PatchPayload) Merge(d DeepEnrichment) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&p.SummaryZh, d.SummaryZh)
	set(&p.SummaryEn, d.SummaryEn)
	set(&p.CoreValue, d.CoreValue)
	set(&p.UseCases, d.UseCases)
	set(&p.ProsCons, d.ProsCons)
	set(&p.ContentZh, d.ContentZh)
	set(&p.ContentEn, d.ContentEn)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks a payload against its struct tags before it is sent.
func Validate(v any) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(v); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+":"+fe.Tag())
			}
			return fmt.Errorf("invalid payload: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
