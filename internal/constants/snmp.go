package constants

const (
	// DefaultSNMPPort is the standard SNMP agent UDP port.
	DefaultSNMPPort uint16 = 161
	// DefaultSNMPCommunity is used when a device omits an SNMP community.
	DefaultSNMPCommunity = "public"
	// DefaultSNMPVersion is used when a device omits an SNMP version.
	DefaultSNMPVersion = "2c"
)
