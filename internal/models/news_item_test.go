package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchPayloadOmitsUnsetFields(t *testing.T) {
	patch := PatchPayload{ID: "tool-1", ScreenshotURL: "https://cdn.example.com/screenshots/a.png"}

	data, err := json.Marshal(patch)
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Len(t, result, 2)
	assert.Equal(t, "tool-1", result["id"])
	assert.Equal(t, "https://cdn.example.com/screenshots/a.png", result["screenshotUrl"])
	assert.NotContains(t, result, "content_zh")
}

func TestPatchPayloadHasChanges(t *testing.T) {
	assert.False(t, PatchPayload{ID: "x"}.HasChanges())
	assert.True(t, PatchPayload{ID: "x", Status: ToolStatusOffline}.HasChanges())

	p := PatchPayload{ID: "x"}
	p.Merge(DeepEnrichment{CoreValue: "  ", ContentEn: "review"})
	assert.Equal(t, []string{"content_en"}, p.ChangedFields())
}

func TestToolPayloadFlattensEnrichment(t *testing.T) {
	payload := ToolPayload{
		Enrichment:     Enrichment{TitleZh: "写作猫", TitleEn: "WriteCat"},
		URL:            "https://writecat.example.com",
		CategoryNameZh: "文本写作",
		CategorySlug:   "writing",
		Rate:           4.9,
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "写作猫", result["title_zh"])
	assert.Equal(t, "writing", result["categorySlug"])
	assert.NotContains(t, result, "screenshotUrl")
}

func TestValidate(t *testing.T) {
	valid := ToolPayload{
		Enrichment:     Enrichment{TitleZh: "秘塔写作猫"},
		URL:            "https://tool.example.com",
		CategoryNameZh: "热门与资讯",
		CategorySlug:   "hot",
		Rate:           4.9,
	}
	require.NoError(t, Validate(valid))

	invalid := valid
	invalid.URL = "not a url"
	invalid.CategorySlug = ""
	err := Validate(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL:url")
	assert.Contains(t, err.Error(), "CategorySlug:required")

	require.Error(t, Validate(NewsPayload{Title: "t", SourceURL: ""}))
}

func TestNormalizeURL(t *testing.T) {
	item := DiscoveredItem{URL: "  https://a.example.com/path  "}
	assert.Equal(t, "https://a.example.com/path", item.Key())
}
