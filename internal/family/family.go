// Package family defines the asset families the pipeline publishes and the
// per-family rules the server and publisher enforce: allowed file
// extensions, export formats and naming conventions.
package family

import (
	"regexp"
	"sort"
	"strings"
)

type Definition struct {
	Name          string   `json:"name"`
	Label         string   `json:"label"`
	Description   string   `json:"description"`
	Extensions    []string `json:"extensions"`
	ExportFormats []string `json:"export_formats"`
	NamingPattern *regexp.Regexp `json:"-"`
}

var definitions = map[string]Definition{
	"model": {
		Name:          "model",
		Label:         "3D Model",
		Description:   "3D geometry models including characters, props, and environments",
		Extensions:    []string{".ma", ".mb", ".fbx", ".obj", ".abc"},
		ExportFormats: []string{"fbx", "obj", "alembic"},
		NamingPattern: regexp.MustCompile(`^[A-Z][a-zA-Z0-9_]*_model_v\d{3}$`),
	},
	"rig": {
		Name:          "rig",
		Label:         "Character Rig",
		Description:   "Character and object rigging setups with controls and constraints",
		Extensions:    []string{".ma", ".mb"},
		ExportFormats: []string{"maya_binary", "maya_ascii"},
		NamingPattern: regexp.MustCompile(`^[A-Z][a-zA-Z0-9_]*_rig_v\d{3}$`),
	},
	"animation": {
		Name:          "animation",
		Label:         "Animation",
		Description:   "Animation data including keyframes and motion capture",
		Extensions:    []string{".ma", ".mb", ".abc", ".fbx"},
		ExportFormats: []string{"fbx", "alembic", "maya_binary"},
		NamingPattern: regexp.MustCompile(`^[A-Z][a-zA-Z0-9_]*_anim_v\d{3}$`),
	},
	"material": {
		Name:          "material",
		Label:         "Material",
		Description:   "Shading materials and surface properties",
		Extensions:    []string{".ma", ".mb"},
		ExportFormats: []string{"maya_binary", "maya_ascii"},
		NamingPattern: regexp.MustCompile(`^[A-Z][a-zA-Z0-9_]*_mat_v\d{3}$`),
	},
	"texture": {
		Name:          "texture",
		Label:         "Texture",
		Description:   "Texture maps and image files for materials",
		Extensions:    []string{".jpg", ".png", ".tga", ".exr", ".hdr", ".tiff"},
		ExportFormats: []string{"original_format"},
		NamingPattern: regexp.MustCompile(`^[A-Z][a-zA-Z0-9_]*_tex_v\d{3}$`),
	},
	"scene": {
		Name:          "scene",
		Label:         "Scene Setup",
		Description:   "Scene configurations including render settings and environment",
		Extensions:    []string{".ma", ".mb"},
		ExportFormats: []string{"maya_binary", "maya_ascii"},
		NamingPattern: regexp.MustCompile(`^[A-Z][a-zA-Z0-9_]*_scene_v\d{3}$`),
	},
	"camera": {
		Name:          "camera",
		Label:         "Camera",
		Description:   "Camera setups and animation for shots",
		Extensions:    []string{".ma", ".mb", ".abc"},
		ExportFormats: []string{"alembic", "maya_binary"},
	},
	"lighting": {
		Name:          "lighting",
		Label:         "Lighting Setup",
		Description:   "Lighting rigs and illumination setups",
		Extensions:    []string{".ma", ".mb"},
		ExportFormats: []string{"maya_binary", "maya_ascii"},
	},
}

func Get(name string) (Definition, bool) {
	def, ok := definitions[strings.ToLower(name)]
	return def, ok
}

func Names() []string {
	names := make([]string, 0, len(definitions))
	for name := range definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllowsExtension reports whether ext (with or without leading dot) is a
// valid upload extension for the family. Unknown families reject everything.
func AllowsExtension(familyName, ext string) bool {
	def, ok := Get(familyName)
	if !ok {
		return false
	}
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	for _, allowed := range def.Extensions {
		if allowed == ext {
			return true
		}
	}
	return false
}

// MatchesNaming checks the asset name against the family's naming pattern.
// Families without a pattern accept any name.
func MatchesNaming(familyName, assetName string) bool {
	def, ok := Get(familyName)
	if !ok {
		return false
	}
	if def.NamingPattern == nil {
		return true
	}
	return def.NamingPattern.MatchString(assetName)
}
