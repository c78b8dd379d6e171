package stmtcache

import (
	"regexp"
)

var (
	attrRegexp = regexp.MustCompile(`@stmt-(id|nocache)(?:[ \t]+([\w.:-]+))?`)
)

type attributes struct {
	id      string
	noCache bool
}

func getAttrs(query string) attributes {
	var attrs attributes
	for _, match := range attrRegexp.FindAllStringSubmatch(query, -1) {
		if len(match) != 3 {
			continue
		}
		switch match[1] {
		case "id":
			if attrs.id == "" {
				attrs.id = match[2]
			}
		case "nocache":
			attrs.noCache = true
		}
	}

	return attrs
}
