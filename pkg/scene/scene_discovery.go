package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownScene is returned by NewScene for names with no built-in scene
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo represents a built-in scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier, accepted by NewScene
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Spheres     int    `json:"spheres"`     // Number of spheres
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

type builtinScene struct {
	info  SceneInfo
	build func() *Scene
}

var builtinScenes = []builtinScene{
	{
		info: SceneInfo{
			ID:          "default",
			Description: "One sphere on a large blue ground sphere, lit from the camera",
			Group:       "Built-in Scenes",
		},
		build: NewDefaultScene,
	},
	{
		info: SceneInfo{
			ID:          "primaries",
			Description: "Red, green and blue spheres lit from the upper left",
			Group:       "Built-in Scenes",
		},
		build: NewPrimariesScene,
	},
	{
		info: SceneInfo{
			ID:          "sphere-grid",
			Description: "8x8 grid of rainbow-colored spheres",
			Group:       "Built-in Scenes",
		},
		build: NewSphereGridScene,
	},
}

// NewScene builds the built-in scene with the given ID.
// An empty name selects the default scene.
func NewScene(name string) (*Scene, error) {
	if name == "" {
		name = "default"
	}
	for _, b := range builtinScenes {
		if b.info.ID == name {
			return b.build(), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
}

// ListScenes returns metadata for every built-in scene, sorted by display name
func ListScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtinScenes))
	for _, b := range builtinScenes {
		info := b.info
		info.Name = titleCase(info.ID)
		info.DisplayName = info.Name
		info.Spheres = b.build().GetPrimitiveCount()
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes
}

// ListAllScenes returns every scene grouped by category, built-in group first
func ListAllScenes() ScenesResponse {
	var response ScenesResponse

	groupMap := make(map[string][]SceneInfo)
	for _, info := range ListScenes() {
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}

	var groupNames []string
	for groupName := range groupMap {
		if groupName != "Built-in Scenes" {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if builtInGroup, exists := groupMap["Built-in Scenes"]; exists {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   "Built-in Scenes",
			Scenes: builtInGroup,
		})
	}

	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response
}

// titleCase converts an ID-style string to title case
// e.g., "sphere-grid" -> "Sphere Grid"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
