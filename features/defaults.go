package features

import (
	"time"

	"priceflow/config"
	"priceflow/internal/frame"
)

// FillDefaults supplies safe values for fields the downstream transforms
// require but inference payloads may omit. Timestamps default to now and
// now plus the configured listing duration, which guarantees a positive
// duration for every prediction. Columns are created when absent and
// null entries are filled; present values are never overwritten.
func FillDefaults(f *frame.Frame, d config.DefaultsConfig, now time.Time) *frame.Frame {
	now = now.UTC()
	fillString(f, "start_time", now.Format(time.RFC3339))
	fillString(f, "end_time", now.Add(d.ListingDuration).Format(time.RFC3339))
	fillString(f, "listing_type", d.ListingType)
	fillString(f, "currency", d.Currency)
	fillFloat(f, "shipping_cost", d.ShippingCost)
	fillInt(f, "watchers", d.Watchers)
	fillInt(f, "bids", d.Bids)
	fillInt(f, "seller_feedback_score", d.SellerFeedbackScore)
	fillFloat(f, "seller_positive_percent", d.SellerPositivePercent)
	return f
}

func fillString(f *frame.Frame, name, def string) {
	c := f.Column(name)
	if c == nil {
		c = frame.NewColumn(name, frame.String, f.Rows())
		f.SetColumn(c)
	}
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			c.SetString(i, def)
		}
	}
}

func fillFloat(f *frame.Frame, name string, def float64) {
	c := f.Column(name)
	if c == nil {
		c = frame.NewColumn(name, frame.Float, f.Rows())
		f.SetColumn(c)
	}
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			switch c.Kind() {
			case frame.Int:
				c.SetInt(i, int64(def))
			default:
				c.SetFloat(i, def)
			}
		}
	}
}

func fillInt(f *frame.Frame, name string, def int64) {
	c := f.Column(name)
	if c == nil {
		c = frame.NewColumn(name, frame.Int, f.Rows())
		f.SetColumn(c)
	}
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			switch c.Kind() {
			case frame.Float:
				c.SetFloat(i, float64(def))
			default:
				c.SetInt(i, def)
			}
		}
	}
}
