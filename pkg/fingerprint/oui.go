package fingerprint

import "strings"

// ouiVendors maps the first three MAC octets to a manufacturer.
var ouiVendors = map[string]string{
	"00:50:56": "VMware",
	"00:0C:29": "VMware",

	"00:1C:14": "Dell",
	"00:1E:C2": "Dell",

	"00:25:90": "Apple",
	"00:26:BB": "Apple",
	"00:23:DF": "Apple",
	"A4:C1:38": "Apple",
	"AC:DE:48": "Apple",

	"00:1B:44": "Cisco",
	"00:1E:13": "Cisco",

	"00:21:70": "HP",
	"00:23:24": "HP",

	"00:50:8B": "Intel",
	"00:1A:79": "Intel",
	"00:1E:67": "Intel",
	"00:1B:21": "Intel",
	"00:1C:BF": "Intel",
	"00:1D:72": "Intel",
	"00:1E:64": "Intel",
	"00:1F:3C": "Intel",
	"00:21:5C": "Intel",
	"00:22:15": "Intel",
	"00:23:14": "Intel",
	"00:24:D6": "Intel",
	"00:25:00": "Intel",
	"00:26:18": "Intel",
	"00:27:10": "Intel",

	"00:15:17": "Microsoft",
	"00:0D:3A": "Microsoft",

	"00:1D:60": "Samsung",
	"00:23:39": "Samsung",

	"00:1F:E2": "Sony",
	"00:24:BE": "Sony",

	"00:1A:2B": "LG",
	"00:1E:75": "LG",

	"00:1C:62": "Netgear",
	"00:24:B2": "Netgear",

	"00:1F:33": "Linksys",
	"00:22:6B": "Linksys",

	"00:1A:70": "TP-Link",
	"00:27:19": "TP-Link",

	"00:1D:0F": "ASUS",
	"00:1E:8C": "ASUS",

	"00:1B:11": "Belkin",
	"00:22:93": "Belkin",

	"00:1E:58": "D-Link",
	"00:21:91": "D-Link",

	"00:1C:C0": "ZyXEL",
	"00:1F:D0": "ZyXEL",

	"00:1A:92": "Buffalo",
	"00:1E:40": "Buffalo",

	"00:1C:23": "Ubiquiti",
	"00:27:22": "Ubiquiti",

	"00:1B:63": "Raspberry Pi",
	"B8:27:EB": "Raspberry Pi",
	"DC:A6:32": "Raspberry Pi",
	"E4:5F:01": "Raspberry Pi",

	"00:1E:06": "Nintendo",
	"00:1F:32": "Nintendo",
	"00:1A:E9": "Nintendo",
	"00:1C:BE": "Nintendo",
	"00:1D:DC": "Nintendo",
	"00:1E:EA": "Nintendo",
	"00:1F:C5": "Nintendo",
	"00:21:47": "Nintendo",
	"00:22:4C": "Nintendo",
	"00:23:31": "Nintendo",
	"00:24:1C": "Nintendo",
	"00:25:A0": "Nintendo",
	"00:26:59": "Nintendo",
}

// OUI returns the upper-case, colon separated first three octets of mac.
func OUI(mac string) string {
	parts := strings.FieldsFunc(mac, func(r rune) bool { return r == ':' || r == '-' })
	if len(parts) < 3 {
		return ""
	}
	return strings.ToUpper(strings.Join(parts[:3], ":"))
}

// VendorFor looks up the manufacturer of mac.
func VendorFor(mac string) (string, bool) {
	oui := OUI(mac)
	if oui == "" {
		return "", false
	}
	v, ok := ouiVendors[oui]
	return v, ok
}
