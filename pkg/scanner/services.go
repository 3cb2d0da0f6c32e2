package scanner

// serviceNames maps well-known TCP ports to display names.
var serviceNames = map[int]string{
	20:    "FTP Data",
	21:    "FTP",
	22:    "SSH",
	23:    "Telnet",
	25:    "SMTP",
	53:    "DNS",
	80:    "HTTP",
	110:   "POP3",
	135:   "MSRPC",
	139:   "NetBIOS",
	143:   "IMAP",
	443:   "HTTPS",
	445:   "SMB",
	465:   "SMTPS",
	587:   "SMTP Submission",
	993:   "IMAPS",
	995:   "POP3S",
	1433:  "MSSQL",
	3306:  "MySQL",
	3389:  "RDP",
	5432:  "PostgreSQL",
	5900:  "VNC",
	8080:  "HTTP Proxy",
	8443:  "HTTPS Alt",
	27017: "MongoDB",
}

// bannerPorts are ports whose services usually speak first, or where a
// short read after connect is worth attempting.
var bannerPorts = map[int]struct{}{
	21:  {},
	22:  {},
	23:  {},
	25:  {},
	80:  {},
	443: {},
}

// ServiceName returns the well-known service for port.
func ServiceName(port int) (string, bool) {
	name, ok := serviceNames[port]
	return name, ok
}

// WantsBanner reports whether a banner read is attempted on port.
func WantsBanner(port int) bool {
	_, ok := bannerPorts[port]
	return ok
}
