package web

// Static page content. Numbers here are marketing copy, not measurements.

type Link struct {
	Name string
	Path string
}

type Stat struct {
	Value string
	Label string
}

type Feature struct {
	Title       string
	Description string
	Color       string
}

type DocSection struct {
	Title string
	Items []string
}

type Block struct {
	Title string
	Body  string
}

// Trend is a headline figure with its change, e.g. the admin overview.
type Trend struct {
	Label  string
	Value  string
	Change string
	Tone   string // success, warning or danger
}

type LinkGroup struct {
	Title string
	Links []Link
}

const (
	SiteName = "ScriptShield"
	Tagline  = "Enterprise Security"
	Blurb    = "Military-grade script protection with 10 layers of security. Trusted by thousands of developers worldwide."
	Support  = "support@scriptshield.com"
)

var nav = []Link{
	{Name: "Home", Path: "/"},
	{Name: "Loader", Path: "/loader"},
	{Name: "Documentation", Path: "/docs"},
	{Name: "Dashboard", Path: "/dashboard"},
	{Name: "About", Path: "/about"},
}

func Nav() []Link {
	return nav
}

var footer = []LinkGroup{
	{Title: "Product", Links: []Link{
		{Name: "Loader", Path: "/loader"},
		{Name: "Documentation", Path: "/docs"},
		{Name: "Dashboard", Path: "/dashboard"},
		{Name: "Pricing", Path: "/pricing"},
	}},
	{Title: "Resources", Links: []Link{
		{Name: "Blog", Path: "/blog"},
		{Name: "Tutorials", Path: "/tutorials"},
		{Name: "API Reference", Path: "/api-reference"},
		{Name: "System Status", Path: "/status"},
	}},
	{Title: "Legal", Links: []Link{
		{Name: "Privacy Policy", Path: "/privacy"},
		{Name: "Terms of Service", Path: "/terms"},
		{Name: "Security", Path: "/security"},
		{Name: "Compliance", Path: "/compliance"},
	}},
}

func Footer() []LinkGroup {
	return footer
}

var homeStats = []Stat{
	{Value: "99.99%", Label: "Uptime"},
	{Value: "2.5M+", Label: "Scripts Protected"},
	{Value: "50K+", Label: "Active Users"},
	{Value: "256-bit", Label: "Encryption"},
}

func HomeStats() []Stat {
	return homeStats
}

var features = []Feature{
	{Title: "Anti-Debug Protection", Description: "Advanced timing checks and execution monitoring prevent debugger attachment", Color: "#06b6d4"},
	{Title: "Memory Protection", Description: "Isolated memory space with checksum verification prevents tampering", Color: "#ec4899"},
	{Title: "String Encryption", Description: "Dynamic XOR encryption keeps sensitive data hidden from reverse engineering", Color: "#10b981"},
	{Title: "Runtime Protection", Description: "Real-time monitoring and threat detection during script execution", Color: "#ef4444"},
	{Title: "Call Protection", Description: "Monitors and secures all function calls within the protected environment", Color: "#3b82f6"},
	{Title: "Integrity Verification", Description: "SHA-256 hashing ensures script integrity before execution", Color: "#f97316"},
}

func Features() []Feature {
	return features
}

var docSections = []DocSection{
	{Title: "Getting Started", Items: []string{"Quick Start Guide", "Installation", "Basic Configuration"}},
	{Title: "API Reference", Items: []string{"Authentication", "Endpoints", "Error Codes", "Rate Limits"}},
	{Title: "Security Features", Items: []string{"Protection Layers", "Configuration", "Best Practices", "Troubleshooting"}},
	{Title: "Integration", Items: []string{"Web Integration", "Desktop Apps", "Mobile Apps", "CLI Tools"}},
	{Title: "Advanced", Items: []string{"Custom Obfuscation", "Performance Tuning", "Security Auditing", "Monitoring"}},
}

func DocSections() []DocSection {
	return docSections
}

var about = []Block{
	{Title: "Our Mission", Body: "To provide enterprise-grade security solutions that protect intellectual property from reverse engineering, tampering, and unauthorized access. We believe in making advanced security accessible to all developers."},
	{Title: "Security First", Body: "Our platform is built with security at its core. From encrypted communications to runtime protection, every layer is designed to withstand even the most sophisticated attacks."},
	{Title: "Global Reach", Body: "Trusted by over 50,000 developers worldwide, protecting millions of scripts daily. Our infrastructure spans multiple continents for maximum availability and performance."},
	{Title: "24/7 Protection", Body: "Our security operations center monitors threats around the clock, with automated response systems that react to suspicious activities in real-time."},
}

func About() []Block {
	return about
}

var adminOverview = []Trend{
	{Label: "Total Users", Value: "5,248", Change: "↑ 12% this month", Tone: "success"},
	{Label: "Active Sessions", Value: "1,427", Change: "↑ 5% today", Tone: "success"},
	{Label: "Threats (24h)", Value: "124", Change: "↓ 8% from yesterday", Tone: "danger"},
	{Label: "Storage Used", Value: "84%", Change: "↑ 2% this week", Tone: "warning"},
}

func AdminOverview() []Trend {
	return adminOverview
}
