package cssmin

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	rgbRe       = regexp.MustCompile(`rgb\s*\(\s*([0-9,\s]+)\s*\)`)
	hexColorRe  = regexp.MustCompile(`(=\s*?["']?)?#([0-9a-fA-F])([0-9a-fA-F])([0-9a-fA-F])([0-9a-fA-F])([0-9a-fA-F])([0-9a-fA-F])(:?\}|[^0-9a-fA-F{][^{]*?\})`)
	noneRe      = regexp.MustCompile(`(?i)(border|border-top|border-right|border-bottom|border-left|outline|background):none([;}])`)
	namedColors = []struct {
		re   *regexp.Regexp
		name string
	}{
		{regexp.MustCompile(`(:|\s)(#f00)([;}])`), "red"},
		{regexp.MustCompile(`(:|\s)(#000080)([;}])`), "navy"},
		{regexp.MustCompile(`(:|\s)(#808080)([;}])`), "gray"},
		{regexp.MustCompile(`(:|\s)(#808000)([;}])`), "olive"},
		{regexp.MustCompile(`(:|\s)(#800080)([;}])`), "purple"},
		{regexp.MustCompile(`(:|\s)(#c0c0c0)([;}])`), "silver"},
		{regexp.MustCompile(`(:|\s)(#008080)([;}])`), "teal"},
		{regexp.MustCompile(`(:|\s)(#ffa500)([;}])`), "orange"},
		{regexp.MustCompile(`(:|\s)(#800000)([;}])`), "maroon"},
	}
)

// rgbToHex rewrites rgb(51,102,153) as #336699 so the hex pass can
// shorten it further. Channels above 255 are clamped. A channel that is
// not an integer leaves the call as written.
func rgbToHex(css string) string {
	return replaceSubmatchFunc(rgbRe, css, func(g []string) string {
		var b strings.Builder
		b.WriteByte('#')
		for _, part := range strings.Split(g[1], ",") {
			v, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return g[0]
			}
			if v > 255 {
				v = 255
			}
			fmt.Fprintf(&b, "%02x", v)
		}
		return b.String()
	})
}

// shortenHexColors turns #AABBCC into #abc inside rule bodies and lower
// cases the colors it cannot shorten. Values of filter attributes such as
// chroma(color="#FFFFFF") are left as they are since IE breaks on the
// short form. The search resumes right after the sixth digit so the rest
// of the block is scanned again.
func shortenHexColors(css string) string {
	var b strings.Builder
	index := 0
	for index < len(css) {
		m := hexColorRe.FindStringSubmatchIndex(css[index:])
		if m == nil {
			break
		}
		group := func(i int) string {
			if m[2*i] < 0 {
				return ""
			}
			return css[index+m[2*i] : index+m[2*i+1]]
		}
		b.WriteString(css[index : index+m[0]])

		switch {
		case group(1) != "":
			b.WriteString(group(1) + "#" + group(2) + group(3) + group(4) + group(5) + group(6) + group(7))
		case strings.EqualFold(group(2), group(3)) && strings.EqualFold(group(4), group(5)) && strings.EqualFold(group(6), group(7)):
			b.WriteString("#" + strings.ToLower(group(3)+group(5)+group(7)))
		default:
			b.WriteString("#" + strings.ToLower(group(2)+group(3)+group(4)+group(5)+group(6)+group(7)))
		}

		index += m[15]
	}
	b.WriteString(css[index:])
	return b.String()
}

// nameColors replaces hex colors that have a shorter keyword.
func nameColors(css string) string {
	for _, c := range namedColors {
		css = c.re.ReplaceAllString(css, "${1}"+c.name+"${3}")
	}
	return css
}

// noneToZero shortens border:none and friends to border:0.
func noneToZero(css string) string {
	return replaceSubmatchFunc(noneRe, css, func(g []string) string {
		return strings.ToLower(g[1]) + ":0" + g[2]
	})
}

func shortenAlpha(css string) string {
	return alphaRe.ReplaceAllString(css, "alpha(opacity=")
}
