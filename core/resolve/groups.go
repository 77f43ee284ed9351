package resolve

// Fixed product-group ids used by the protection-device and enclosure
// derivations. Consumer groups feed the engineering ratios, protection groups
// are synthesized and therefore excluded from the general rule path.
const (
	GroupSocketSingle = "GRP-SOCKET-1"
	GroupSocketDouble = "GRP-SOCKET-2"
	GroupLightSwitch  = "GRP-SWITCH"
	GroupStove        = "GRP-STOVE"

	GroupBreaker16   = "GRP-MCB-B16"
	GroupBreaker10   = "GRP-MCB-B10"
	GroupBreaker3P16 = "GRP-MCB-3P16"
	GroupRCD         = "GRP-RCD-40"
	GroupMainSwitch  = "GRP-MAIN-SWITCH"

	GroupEnclosure = "GRP-ENCLOSURE"
)

var protectionGroups = map[string]bool{
	GroupBreaker16:   true,
	GroupBreaker10:   true,
	GroupBreaker3P16: true,
	GroupRCD:         true,
	GroupMainSwitch:  true,
}

// IsProtectionGroup reports whether the group is synthesized by the
// protection-device deriver.
func IsProtectionGroup(groupID string) bool { return protectionGroups[groupID] }
