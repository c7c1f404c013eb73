package chart

import (
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1"

	"github.com/askiada/procdash/pkg/bagel"
)

// StatusColors are the bar colors of each pipeline status.
var StatusColors = map[string]string{
	bagel.StatusSuccess:     "rgb(36, 222, 138)",
	bagel.StatusFail:        "rgb(217, 2, 2)",
	bagel.StatusIncomplete:  "rgb(245, 143, 76)",
	bagel.StatusUnavailable: "rgb(227, 227, 227)",
}

const otherStatusColor = "rgb(127, 127, 127)"

// StatusColor returns the hexadecimal color of status. Unknown statuses are gray.
func StatusColor(status string) (string, error) {
	rgb, ok := StatusColors[status]
	if !ok {
		rgb = otherStatusColor
	}

	col, err := colors.ParseRGB(rgb)
	if err != nil {
		return "", errors.Wrapf(err, "unable to parse color of %s", status)
	}

	return col.ToHEX().String(), nil
}
