package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"shaaban-furniture-backend/models"
)

// DefaultCatalog is used when no CATALOG_PATH is configured.
func DefaultCatalog() models.Catalog {
	return models.Catalog{
		Store: models.StoreInfo{
			Name:     "Shaaban Furniture Hub",
			Location: "Zanzibar, Tanzania",
			Phone:    "+255 686 587 266",
			WhatsApp: "+255686587266",
			Email:    "contact@shaabanfurniture.com",
			Currency: "TZS",
		},
		Categories: []models.Category{
			{ID: "living-room", Name: "Living Room", ImageHint: "living room"},
			{ID: "bedroom", Name: "Bedroom", ImageHint: "bedroom furniture"},
			{ID: "dining", Name: "Dining", ImageHint: "dining table"},
			{ID: "office", Name: "Office", ImageHint: "office desk"},
			{ID: "outdoor", Name: "Outdoor", ImageHint: "outdoor furniture"},
			{ID: "storage", Name: "Storage", ImageHint: "wooden chest"},
		},
	}
}

// LoadCatalog parses the YAML catalog at path. Missing store fields keep
// their defaults; an empty path returns DefaultCatalog.
func LoadCatalog(path string) (models.Catalog, error) {
	catalog := DefaultCatalog()
	if path == "" {
		return catalog, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	var parsed models.Catalog
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return models.Catalog{}, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	mergeStore(&catalog.Store, parsed.Store)
	if len(parsed.Categories) > 0 {
		seen := make(map[string]bool, len(parsed.Categories))
		for _, c := range parsed.Categories {
			if c.ID == "" || c.Name == "" {
				return models.Catalog{}, fmt.Errorf("parse catalog %s: category needs id and name", path)
			}
			if seen[c.ID] {
				return models.Catalog{}, fmt.Errorf("parse catalog %s: duplicate category %q", path, c.ID)
			}
			seen[c.ID] = true
		}
		catalog.Categories = parsed.Categories
	}
	return catalog, nil
}

func mergeStore(dst *models.StoreInfo, src models.StoreInfo) {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.Name, src.Name)
	set(&dst.Location, src.Location)
	set(&dst.Phone, src.Phone)
	set(&dst.WhatsApp, src.WhatsApp)
	set(&dst.Email, src.Email)
	set(&dst.Currency, src.Currency)
}
