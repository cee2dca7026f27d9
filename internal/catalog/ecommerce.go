package catalog

import "github.com/dshills/materialcheck/internal/schema"

func ecommerce() *Template {
	return &Template{
		ID:   "ecommerce",
		Name: "Online shop",
		Modules: []Module{
			brandModule(),
			{
				ID:   "catalog",
				Name: "Product catalog",
				Sections: []Section{
					{
						ID:   "featured",
						Name: "Featured products",
						Fields: []Field{
							{ID: "collection_name", Label: "Featured collection name", Type: schema.FieldText, Required: true, Phase: schema.Phase2,
								Rules: schema.Rules{MinLength: 3, MaxLength: 50}},
							{ID: "collection_text", Label: "Collection description", Type: schema.FieldTextarea, Required: true, Phase: schema.Phase2,
								Rules: schema.Rules{MinLength: 80, MaxLength: 600}},
							{ID: "product_photo", Label: "Featured product photo", Type: schema.FieldImage, Required: true, Phase: schema.Phase2, Rules: thumbRules},
						},
					},
				},
			},
			{
				ID:   "policies",
				Name: "Store policies",
				Sections: []Section{
					{
						ID:   "legal",
						Name: "Legal",
						Fields: []Field{
							{ID: "shipping", Label: "Shipping policy", Type: schema.FieldTextarea, Required: true, Phase: schema.Phase3,
								Rules: schema.Rules{MinLength: 100, MaxLength: 3000}},
							{ID: "returns", Label: "Return policy", Type: schema.FieldTextarea, Required: true, Phase: schema.Phase3,
								Rules: schema.Rules{MinLength: 100, MaxLength: 3000}},
						},
					},
				},
			},
			contactModule(),
		},
	}
}
