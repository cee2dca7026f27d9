package catalog

import "github.com/dshills/materialcheck/internal/schema"

func restaurant() *Template {
	return &Template{
		ID:   "restaurant",
		Name: "Restaurant",
		Modules: []Module{
			brandModule(),
			{
				ID:   "menu",
				Name: "Menu",
				Sections: []Section{
					{
						ID:   "highlights",
						Name: "Highlights",
						Fields: []Field{
							{ID: "signature_dish", Label: "Signature dish", Type: schema.FieldText, Required: true, Phase: schema.Phase2,
								Rules: schema.Rules{MinLength: 3, MaxLength: 60}},
							{ID: "dish_description", Label: "Dish description", Type: schema.FieldTextarea, Required: true, Phase: schema.Phase2,
								Rules: schema.Rules{MinLength: 40, MaxLength: 400, AllowEmoji: true}},
							{ID: "dish_photo", Label: "Dish photo", Type: schema.FieldImage, Required: true, Phase: schema.Phase2, Rules: thumbRules},
							{ID: "cuisine", Label: "Cuisine", Type: schema.FieldSelect, Required: false, Phase: schema.Phase3,
								Rules: schema.Rules{Options: []string{"taiwanese", "japanese", "italian", "fusion", "other"}}},
						},
					},
				},
			},
			{
				ID:   "ambience",
				Name: "Ambience",
				Sections: []Section{
					{
						ID:   "space",
						Name: "Dining space",
						Fields: []Field{
							{ID: "interior_photo", Label: "Interior photo", Type: schema.FieldImage, Required: false, Phase: schema.Phase3, Rules: photoRules},
							{ID: "opening_hours", Label: "Opening hours", Type: schema.FieldTextarea, Required: true, Phase: schema.Phase2,
								Rules: schema.Rules{MinLength: 10, MaxLength: 300}},
						},
					},
				},
			},
			contactModule(),
		},
	}
}
