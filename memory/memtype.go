package memory

// TypeProperties mirrors one entry of VkPhysicalDeviceMemoryProperties:
// the property-flag bits a given memory-type index exposes.
type TypeProperties struct {
	Flags uint32
}

const deviceLocalBit uint32 = 0x1

// FindMemoryIndex picks the memory-type index matching flags among the
// types allowed by typeBitsRequirement, falling back to the same flags
// with the device-local bit dropped (so integrated GPUs without
// dedicated memory still resolve an index), per spec §4.1.
func FindMemoryIndex(types []TypeProperties, flags uint32, typeBitsRequirement uint32) (uint32, bool) {
	if idx, ok := findIndex(types, flags, typeBitsRequirement); ok {
		return idx, true
	}
	if flags&deviceLocalBit != 0 {
		if idx, ok := findIndex(types, flags&^deviceLocalBit, typeBitsRequirement); ok {
			return idx, true
		}
	}
	return 0, false
}

func findIndex(types []TypeProperties, flags uint32, typeBitsRequirement uint32) (uint32, bool) {
	for i, t := range types {
		isRequiredType := typeBitsRequirement&(1<<uint(i)) != 0
		hasProps := flags == 0 || t.Flags&flags == flags
		if isRequiredType && hasProps {
			return uint32(i), true
		}
	}
	return 0, false
}
