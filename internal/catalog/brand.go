package catalog

import "github.com/dshills/materialcheck/internal/schema"

const mb = 1 << 20

var (
	photoRules = schema.Rules{
		Formats:          []string{"jpeg", "png", "webp"},
		MinWidth:         1920,
		MinHeight:        1080,
		RecommendedWidth: 2560,
		MaxSize:          5 * mb,
	}
	logoRules = schema.Rules{
		Formats:          []string{"png", "webp"},
		MinWidth:         512,
		MinHeight:        512,
		RecommendedWidth: 1024,
		MaxSize:          2 * mb,
	}
	thumbRules = schema.Rules{
		Formats:  []string{"jpeg", "png", "webp"},
		MinWidth: 800, MinHeight: 600,
		MaxSize: 3 * mb,
	}
)

// brandModule is shared by every built-in template; it holds the
// foundational Phase-1 data a site cannot be designed without.
func brandModule() Module {
	return Module{
		ID:   "brand",
		Name: "Brand",
		Sections: []Section{
			{
				ID:   "identity",
				Name: "Identity",
				Fields: []Field{
					{ID: "company_name", Label: "Company name", Type: schema.FieldText, Required: true, Phase: schema.Phase1,
						Rules: schema.Rules{MinLength: 2, MaxLength: 60}},
					{ID: "logo", Label: "Logo", Type: schema.FieldLogo, Required: true, Phase: schema.Phase1, Rules: logoRules},
					{ID: "primary_color", Label: "Primary brand color", Type: schema.FieldColor, Required: true, Phase: schema.Phase1},
					{ID: "tagline", Label: "Tagline", Type: schema.FieldText, Required: false, Phase: schema.Phase2,
						Rules: schema.Rules{MinLength: 10, MaxLength: 80}},
				},
			},
			{
				ID:   "voice",
				Name: "Voice",
				Fields: []Field{
					{ID: "tone", Label: "Tone of voice", Type: schema.FieldSelect, Required: true, Phase: schema.Phase1,
						Rules: schema.Rules{Options: []string{"friendly", "professional", "playful", "luxury"}}},
				},
			},
		},
	}
}

func contactModule() Module {
	return Module{
		ID:   "contact",
		Name: "Contact",
		Sections: []Section{
			{
				ID:   "details",
				Name: "Details",
				Fields: []Field{
					{ID: "email", Label: "Public email", Type: schema.FieldText, Required: true, Phase: schema.Phase2,
						Rules: schema.Rules{MinLength: 5, MaxLength: 120}},
					{ID: "phone", Label: "Phone", Type: schema.FieldText, Required: false, Phase: schema.Phase2,
						Rules: schema.Rules{MinLength: 6, MaxLength: 30}},
					{ID: "address", Label: "Address", Type: schema.FieldTextarea, Required: false, Phase: schema.Phase3,
						Rules: schema.Rules{MaxLength: 300}},
				},
			},
		},
	}
}
