package catalog

import "github.com/dshills/materialcheck/internal/schema"

func corporate() *Template {
	return &Template{
		ID:   "corporate",
		Name: "Corporate site",
		Modules: []Module{
			brandModule(),
			{
				ID:   "about",
				Name: "About",
				Sections: []Section{
					{
						ID:   "story",
						Name: "Company story",
						Fields: []Field{
							{ID: "headline", Label: "About headline", Type: schema.FieldText, Required: true, Phase: schema.Phase2,
								Rules: schema.Rules{MinLength: 10, MaxLength: 70}},
							{ID: "body", Label: "About text", Type: schema.FieldTextarea, Required: true, Phase: schema.Phase2,
								Rules: schema.Rules{MinLength: 200, MaxLength: 1500}},
							{ID: "team_photo", Label: "Team photo", Type: schema.FieldImage, Required: false, Phase: schema.Phase3, Rules: photoRules},
						},
					},
				},
			},
			{
				ID:   "services",
				Name: "Services",
				Sections: []Section{
					{
						ID:   "overview",
						Name: "Overview",
						Fields: []Field{
							{ID: "intro", Label: "Services introduction", Type: schema.FieldTextarea, Required: true, Phase: schema.Phase2,
								Rules: schema.Rules{MinLength: 100, MaxLength: 800}},
							{ID: "hero_image", Label: "Services hero image", Type: schema.FieldImage, Required: false, Phase: schema.Phase3, Rules: photoRules},
						},
					},
				},
			},
			contactModule(),
		},
	}
}
