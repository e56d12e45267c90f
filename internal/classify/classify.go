// Package classify maps free text onto the portal's fixed category buckets.
package classify

import "strings"

// Category is one of the portal's category buckets.
type Category struct {
	NameZh string
	NameEn string
	Slug   string
}

var (
	Writing   = Category{NameZh: "文本写作", NameEn: "Writing", Slug: "writing"}
	Images    = Category{NameZh: "图像艺术", NameEn: "Image & Art", Slug: "images"}
	Video     = Category{NameZh: "视频创作", NameEn: "Video", Slug: "video"}
	Audio     = Category{NameZh: "音频音乐", NameEn: "Audio & Music", Slug: "audio"}
	Chat      = Category{NameZh: "对话助手", NameEn: "Chat Assistants", Slug: "chat"}
	Design    = Category{NameZh: "商业设计", NameEn: "Design", Slug: "design"}
	Office    = Category{NameZh: "效率办公", NameEn: "Productivity", Slug: "office"}
	Dev       = Category{NameZh: "编程开发", NameEn: "Development", Slug: "dev"}
	Industry  = Category{NameZh: "行业应用", NameEn: "Industry", Slug: "industry"}
	Resources = Category{NameZh: "资源与认证", NameEn: "Learning Resources", Slug: "resources"}
	Hot       = Category{NameZh: "热门与资讯", NameEn: "Trending", Slug: "hot"}
)

type rule struct {
	keyword  string
	category Category
}

// rules is evaluated in order; the first keyword contained in the text wins.
var rules = []rule{
	{"写作", Writing},
	{"绘画", Images},
	{"视频", Video},
	{"音频", Audio},
	{"对话", Chat},
	{"设计", Design},
	{"办公", Office},
	{"编程", Dev},
	{"医疗", Industry},
	{"金融", Industry},
	{"学习", Resources},
}

// Classify returns the category of the first matching keyword, or Hot.
func Classify(text string) Category {
	for _, r := range rules {
		if strings.Contains(text, r.keyword) {
			return r.category
		}
	}
	return Hot
}

// BySlug looks up a category by slug.
func BySlug(slug string) (Category, bool) {
	if slug == Hot.Slug {
		return Hot, true
	}
	for _, r := range rules {
		if r.category.Slug == slug {
			return r.category, true
		}
	}
	return Category{}, false
}
