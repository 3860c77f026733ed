package cssmin

import (
	"regexp"
	"strings"
)

var (
	zeroUnitRe     = regexp.MustCompile(`(?i)(^|: ?)((?:[0-9a-z.\-]+ )*?)?(?:0?\.)?0(?:px|em|in|cm|mm|pc|pt|ex|deg|g?rad|k?hz)`)
	zeroPercentRe  = regexp.MustCompile(`(?i)(: ?)((?:[0-9a-z.\-]+ )*?)?(?:0?\.)?0%`)
	keyframeEndRe  = regexp.MustCompile(`(?i)(^|,|\{) ?100% ?\{`)
	zeroInGroupRe  = regexp.MustCompile(`(?i)\( ?((?:[#0-9a-z.\-]+[ ,])*)?(?:0?\.)?0(?:px|em|%|in|cm|mm|pc|pt|ex|deg|g?rad|m?s|k?hz)`)
	zeroFractionRe = regexp.MustCompile(`([0-9])\.0(px|em|%|in|cm|mm|pc|pt|ex|deg|m?s|g?rad|k?hz| |;)`)
	fourZerosRe    = regexp.MustCompile(`:0 0 0 0([;}])`)
	threeZerosRe   = regexp.MustCompile(`:0 0 0([;}])`)
	twoZerosRe     = regexp.MustCompile(`:0 0([;}])`)
	positionZeroRe = regexp.MustCompile(`(?i)(background-position|webkit-mask-position|transform-origin|webkit-transform-origin|moz-transform-origin|o-transform-origin|ms-transform-origin|box-shadow|text-shadow):0([;}])`)
	leadingZeroRe  = regexp.MustCompile(`(:|\s)0+\.(\d+)`)
)

// colorFunctions take percentages that must keep their unit.
var colorFunctions = afterFold("hsl", "hsla", "rgb", "rgba", "linear-gradien", "linear-gradient")

// foldZeroUnits drops the unit from zero lengths, angles and frequencies
// in value position. Seconds are kept since transitions need them.
func foldZeroUnits(css string) string {
	css = fixedPoint(css, func(s string) string {
		return zeroUnitRe.ReplaceAllString(s, "${1}${2}0")
	})
	// 0% in keyframe selectors is left alone.
	css = fixedPoint(css, func(s string) string {
		return zeroPercentRe.ReplaceAllString(s, "${1}${2}0")
	})
	return fixedPoint(css, func(s string) string {
		return keyframeEndRe.ReplaceAllString(s, "${1}to{")
	})
}

// foldZeroUnitsInGroups does the same inside argument lists such as
// gradient stops, except for color functions.
func foldZeroUnitsInGroups(css string) string {
	return fixedPoint(css, func(s string) string {
		return replaceUnless(zeroInGroupRe, s, colorFunctions, func(g []string) string {
			return "(" + g[1] + "0"
		})
	})
}

func dropZeroFraction(css string) string {
	return zeroFractionRe.ReplaceAllString(css, "${1}${2}")
}

// collapseZeroShorthands folds "0 0 0 0", "0 0 0" and "0 0" to a single
// zero. flex:0 0 means something else and keeps both values.
func collapseZeroShorthands(css string) string {
	css = fourZerosRe.ReplaceAllString(css, ":0${1}")
	css = threeZerosRe.ReplaceAllString(css, ":0${1}")
	return replaceUnless(twoZerosRe, css, func(before string) bool {
		return strings.HasSuffix(before, "flex")
	}, func(g []string) string {
		return ":0" + g[1]
	})
}

// expandPositionZero restores "0 0" for properties where a single zero is
// not equivalent.
func expandPositionZero(css string) string {
	return replaceSubmatchFunc(positionZeroRe, css, func(g []string) string {
		return strings.ToLower(g[1]) + ":0 0" + g[2]
	})
}

func dropLeadingZero(css string) string {
	return leadingZeroRe.ReplaceAllString(css, "${1}.${2}")
}
