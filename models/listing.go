package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"priceflow/internal/frame"
)

// FlexFloat is a nullable float that tolerates JSON numbers, numeric
// strings and null. An unparsable string decodes to null instead of
// failing the whole payload, so the pipeline's null handling applies
// uniformly.
type FlexFloat struct {
	Float64 float64
	Valid   bool
}

func NewFlexFloat(v float64) FlexFloat { return FlexFloat{Float64: v, Valid: true} }

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = FlexFloat{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*f = FlexFloat{}
			return nil
		}
		return f.parse(s)
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		*f = FlexFloat{}
		return nil
	}
	*f = FlexFloat{Float64: v, Valid: true}
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Float64)
}

func (f *FlexFloat) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*f = FlexFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = FlexFloat{}
		return nil
	}
	*f = FlexFloat{Float64: v, Valid: true}
	return nil
}

// Listing is one marketplace item offering, the unit record the pipeline
// ingests and featurizes. Target fields (FinalPrice, Sold) are present
// only on training data.
type Listing struct {
	ItemID                string    `json:"item_id"`
	Title                 *string   `json:"title,omitempty"`
	CategoryPath          *string   `json:"category_path,omitempty"`
	Brand                 *string   `json:"brand,omitempty"`
	Model                 *string   `json:"model,omitempty"`
	Condition             *string   `json:"condition,omitempty"`
	StartTime             *string   `json:"start_time,omitempty"`
	EndTime               *string   `json:"end_time,omitempty"`
	ListingType           *string   `json:"listing_type,omitempty"`
	StartPrice            FlexFloat `json:"start_price"`
	ShippingCost          FlexFloat `json:"shipping_cost"`
	SellerUsername        *string   `json:"seller_username,omitempty"`
	SellerFeedbackScore   FlexFloat `json:"seller_feedback_score"`
	SellerPositivePercent FlexFloat `json:"seller_positive_percent"`
	Watchers              FlexFloat `json:"watchers"`
	Bids                  FlexFloat `json:"bids"`
	Currency              *string   `json:"currency,omitempty"`
	FinalPrice            FlexFloat `json:"final_price"`
	Sold                  *bool     `json:"sold,omitempty"`
}

// ListingFrame converts listings into a frame with the canonical column
// layout. Target columns are included only when at least one record
// carries a value, so inference batches never grow target columns.
func ListingFrame(listings []Listing) *frame.Frame {
	n := len(listings)
	f := frame.New(n)

	str := func(name string, get func(l Listing) *string) {
		c := frame.NewColumn(name, frame.String, n)
		for i, l := range listings {
			if v := get(l); v != nil {
				c.SetString(i, *v)
			}
		}
		f.SetColumn(c)
	}
	flt := func(name string, get func(l Listing) FlexFloat) {
		c := frame.NewColumn(name, frame.Float, n)
		for i, l := range listings {
			if v := get(l); v.Valid {
				c.SetFloat(i, v.Float64)
			}
		}
		f.SetColumn(c)
	}
	cnt := func(name string, get func(l Listing) FlexFloat) {
		c := frame.NewColumn(name, frame.Int, n)
		for i, l := range listings {
			if v := get(l); v.Valid {
				c.SetInt(i, int64(v.Float64))
			}
		}
		f.SetColumn(c)
	}

	id := frame.NewColumn("item_id", frame.String, n)
	for i, l := range listings {
		id.SetString(i, l.ItemID)
	}
	f.SetColumn(id)

	str("title", func(l Listing) *string { return l.Title })
	str("category_path", func(l Listing) *string { return l.CategoryPath })
	str("brand", func(l Listing) *string { return l.Brand })
	str("model", func(l Listing) *string { return l.Model })
	str("condition", func(l Listing) *string { return l.Condition })
	str("start_time", func(l Listing) *string { return l.StartTime })
	str("end_time", func(l Listing) *string { return l.EndTime })
	str("listing_type", func(l Listing) *string { return l.ListingType })
	flt("start_price", func(l Listing) FlexFloat { return l.StartPrice })
	flt("shipping_cost", func(l Listing) FlexFloat { return l.ShippingCost })
	str("seller_username", func(l Listing) *string { return l.SellerUsername })
	cnt("seller_feedback_score", func(l Listing) FlexFloat { return l.SellerFeedbackScore })
	flt("seller_positive_percent", func(l Listing) FlexFloat { return l.SellerPositivePercent })
	cnt("watchers", func(l Listing) FlexFloat { return l.Watchers })
	cnt("bids", func(l Listing) FlexFloat { return l.Bids })
	str("currency", func(l Listing) *string { return l.Currency })

	hasFinal, hasSold := false, false
	for _, l := range listings {
		if l.FinalPrice.Valid {
			hasFinal = true
		}
		if l.Sold != nil {
			hasSold = true
		}
	}
	if hasFinal {
		flt("final_price", func(l Listing) FlexFloat { return l.FinalPrice })
	}
	if hasSold {
		c := frame.NewColumn("sold", frame.Bool, n)
		for i, l := range listings {
			if l.Sold != nil {
				c.SetBool(i, *l.Sold)
			}
		}
		f.SetColumn(c)
	}
	return f
}

// ListingFromRecord builds a Listing from a header/value pair as read
// from a CSV row. Empty strings are nulls; numeric fields go through the
// same lenient coercion as JSON payloads.
func ListingFromRecord(header, record []string) Listing {
	var l Listing
	for i, name := range header {
		if i >= len(record) {
			break
		}
		v := strings.TrimSpace(record[i])
		if v == "" {
			continue
		}
		switch name {
		case "item_id":
			l.ItemID = v
		case "title":
			l.Title = ptr(v)
		case "category_path":
			l.CategoryPath = ptr(v)
		case "brand":
			l.Brand = ptr(v)
		case "model":
			l.Model = ptr(v)
		case "condition":
			l.Condition = ptr(v)
		case "start_time":
			l.StartTime = ptr(v)
		case "end_time":
			l.EndTime = ptr(v)
		case "listing_type":
			l.ListingType = ptr(v)
		case "seller_username":
			l.SellerUsername = ptr(v)
		case "currency":
			l.Currency = ptr(v)
		case "start_price":
			l.StartPrice.parse(v) //nolint:errcheck // never errors
		case "shipping_cost":
			l.ShippingCost.parse(v) //nolint:errcheck
		case "seller_feedback_score":
			l.SellerFeedbackScore.parse(v) //nolint:errcheck
		case "seller_positive_percent":
			l.SellerPositivePercent.parse(v) //nolint:errcheck
		case "watchers":
			l.Watchers.parse(v) //nolint:errcheck
		case "bids":
			l.Bids.parse(v) //nolint:errcheck
		case "final_price":
			l.FinalPrice.parse(v) //nolint:errcheck
		case "sold":
			if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
				l.Sold = &b
			}
		}
	}
	return l
}

func ptr(s string) *string { return &s }
