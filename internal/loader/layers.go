package loader

// Layer is one of the protection layers listed on the Loader page. The
// descriptions are marketing copy.
type Layer struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Active      bool   `json:"status"`
	Description string `json:"description"`
	Details     string `json:"details"`
}

// Priority is High for the first three layers, Medium up to seven, Low after.
func (l Layer) Priority() string {
	switch {
	case l.ID <= 3:
		return "High"
	case l.ID <= 7:
		return "Medium"
	default:
		return "Low"
	}
}

var layers = []Layer{
	{1, "Environment Protection", "shield", true,
		"Prevents script execution in unauthorized environments by checking system signatures and runtime conditions.",
		"Validates environment variables, process names, and runtime flags to ensure execution only in trusted contexts."},
	{2, "Anti-Debug", "cpu", true,
		"Detects and prevents debugger attachment using timing checks and execution monitoring.",
		"Uses hardware breakpoint detection, timing discrepancies, and debug register monitoring to identify debugging attempts."},
	{3, "Anti-Tamper", "lock", true,
		"Prevents code modification during runtime with integrity checks and memory protection.",
		"Implements CRC32 checksums, memory page protection, and real-time code signature verification."},
	{4, "Memory Protection", "brain", true,
		"Isolated memory space with checksum verification prevents unauthorized access and tampering.",
		"Uses virtual memory isolation, heap encryption, and pointer obfuscation to secure sensitive data."},
	{5, "Anti-Hook", "zap", true,
		"Detects and prevents function hooking attempts by monitoring API calls and function pointers.",
		"Monitors IAT/EAT tables, checks function prologs, and validates import addresses for hook detection."},
	{6, "Call Protection", "eye", true,
		"Monitors and secures all function calls within the protected environment.",
		"Implements call stack validation, return address checks, and control flow integrity verification."},
	{7, "String Encryption", "file-code", true,
		"Dynamic XOR encryption keeps sensitive data hidden from reverse engineering attempts.",
		"Uses runtime decryption, string pooling, and constant folding to protect string literals."},
	{8, "Integrity Hash", "fingerprint", true,
		"SHA-256 hashing ensures script integrity before and during execution.",
		"Performs continuous hash verification, memory checksums, and runtime integrity validation."},
	{9, "Runtime Protection", "shield-check", true,
		"Real-time monitoring and threat detection during script execution.",
		"Implements behavior analysis, anomaly detection, and automated threat response systems."},
	{10, "Encryption Layer", "server", true,
		"End-to-end encryption for all communications and stored data.",
		"Uses AES-256 encryption for network traffic and ChaCha20 for local data protection."},
}

// Layers returns the ten protection layers in order.
func Layers() []Layer {
	out := make([]Layer, len(layers))
	copy(out, layers)
	return out
}

// LayerStatus is the /api/status/protection payload entry.
type LayerStatus struct {
	Layer
	Priority string `json:"priority"`
}

func LayerStatuses() []LayerStatus {
	out := make([]LayerStatus, 0, len(layers))
	for _, l := range layers {
		out = append(out, LayerStatus{Layer: l, Priority: l.Priority()})
	}
	return out
}

// AllActive reports whether every layer is switched on.
func AllActive() bool {
	for _, l := range layers {
		if !l.Active {
			return false
		}
	}
	return true
}
