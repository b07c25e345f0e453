package shaderio

import (
	"regexp"
	"strconv"
)

// BindingKind is the resource kind a reflected binding declares, used
// by the pass factory to build descriptor-set layouts (spec §4.4,
// §4.5 step 1).
type BindingKind int

const (
	BindingUniformBuffer BindingKind = iota
	BindingStorageBuffer
	BindingSampledTexture
	BindingStorageTexture
	BindingSampler
)

// SetBinding is one reflected `@group(N) @binding(M)` declaration.
type SetBinding struct {
	Group   uint32
	Binding uint32
	Kind    BindingKind
	Name    string
}

// MaterialFlag names a set-2 material-texture feature, derived from
// fixed binding numbers per spec §4.4.
type MaterialFlag uint8

const (
	MaterialAlbedo MaterialFlag = 1 << iota
	MaterialNormal
	MaterialSpecular
)

// fixed set-2 binding numbers for the three recognised material
// textures (spec §4.4: "derived from specific set-2 binding numbers").
const (
	albedoBinding    = 0
	normalBinding    = 1
	specularBinding  = 2
)

// VertexAttr names one of the fixed vertex-input attribute slots;
// locations map 1-to-1 to this set, in this order (spec §4.4).
type VertexAttr int

const (
	AttrPosition VertexAttr = iota
	AttrUV
	AttrNormal
	AttrTangent
	AttrBitangent
	attrCount
)

// VertexMask is a bitmask of which of the fixed vertex attributes the
// vertex stage declares as inputs.
type VertexMask uint8

func (m VertexMask) Has(a VertexAttr) bool { return m&(1<<uint(a)) != 0 }

// Reflection is everything the pass factory needs out of one compiled
// shader module: per-set bindings, the material-feature mask (set 2),
// and the vertex-input mask (vertex stage only).
type Reflection struct {
	Bindings     []SetBinding // set 1 only — the "pass" set (spec §4.4)
	MaterialMask MaterialFlag // derived from set 2
	VertexMask   VertexMask
}

var (
	bindingRe  = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([a-zA-Z_-]+)>)?\s+(\w+)\s*:\s*([\w<>,\s]+?)\s*[;,]`)
	locationRe = regexp.MustCompile(`@location\((\d+)\)\s+(\w+)\s*:`)
	vertexFnRe = regexp.MustCompile(`@vertex\s*\n?\s*fn\s+\w+\s*\(\s*\w+\s*:\s*(\w+)`)
	structRe   = func(name string) *regexp.Regexp {
		return regexp.MustCompile(`struct\s+` + regexp.QuoteMeta(name) + `\s*\{([^}]*)\}`)
	}
)

// Reflect extracts binding, material, and vertex-input information
// directly from WGSL source text. naga's own IR exposes this same
// information structurally, but this module scans the source directly
// rather than depend on the exact shape of naga's reflection types —
// see DESIGN.md.
func Reflect(wgsl string) (Reflection, error) {
	var refl Reflection

	for _, m := range bindingRe.FindAllStringSubmatch(wgsl, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		storageClass := m[3]
		name := m[4]
		typeExpr := m[5]

		kind := classifyBinding(storageClass, typeExpr)

		if group == 1 {
			refl.Bindings = append(refl.Bindings, SetBinding{
				Group:   uint32(group),
				Binding: uint32(binding),
				Kind:    kind,
				Name:    name,
			})
		}
		if group == 2 {
			switch binding {
			case albedoBinding:
				refl.MaterialMask |= MaterialAlbedo
			case normalBinding:
				refl.MaterialMask |= MaterialNormal
			case specularBinding:
				refl.MaterialMask |= MaterialSpecular
			}
		}
	}

	refl.VertexMask = reflectVertexMask(wgsl)

	return refl, nil
}

func classifyBinding(storageClass, typeExpr string) BindingKind {
	switch {
	case storageClass == "uniform":
		return BindingUniformBuffer
	case storageClass == "storage":
		return BindingStorageBuffer
	}
	switch {
	case containsAny(typeExpr, "texture_storage"):
		return BindingStorageTexture
	case containsAny(typeExpr, "texture_"):
		return BindingSampledTexture
	case containsAny(typeExpr, "sampler"):
		return BindingSampler
	}
	return BindingUniformBuffer
}

func containsAny(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// reflectVertexMask finds the @vertex entry point's input parameter
// type, locates that struct's definition anywhere in the source, and
// matches its @location(N) decorated fields against the fixed
// attribute ordering {position, uv, normal, tangent, bitangent}.
func reflectVertexMask(wgsl string) VertexMask {
	fnMatch := vertexFnRe.FindStringSubmatch(wgsl)
	if fnMatch == nil {
		return 0
	}
	inputType := fnMatch[1]

	structMatch := structRe(inputType).FindStringSubmatch(wgsl)
	if structMatch == nil {
		return 0
	}
	body := structMatch[1]

	var mask VertexMask
	for _, m := range locationRe.FindAllStringSubmatch(body, -1) {
		idx, _ := strconv.Atoi(m[1])
		if idx >= 0 && idx < int(attrCount) {
			mask |= 1 << uint(idx)
		}
	}
	return mask
}
