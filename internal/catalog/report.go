package catalog

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

type csvProduct struct {
	ID          int64  `csv:"id"`
	Name        string `csv:"name"`
	Price       string `csv:"price"`
	Description string `csv:"description"`
	Image       string `csv:"image"`
}

// ExportCSV writes the catalog as CSV with a header row
func (c *Catalog) ExportCSV(w io.Writer) error {
	products := c.List()
	rows := make([]csvProduct, 0, len(products))
	for _, p := range products {
		rows = append(rows, csvProduct{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price.String(),
			Description: p.Description,
			Image:       p.Image,
		})
	}
	return errors.Wrap(gocsv.Marshal(&rows, w), "export csv")
}

// Summary holds price statistics over the whole catalog
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

func (c *Catalog) Summarize() (Summary, error) {
	products := c.List()
	if len(products) == 0 {
		return Summary{}, nil
	}
	prices := make(stats.Float64Data, 0, len(products))
	for _, p := range products {
		prices = append(prices, p.Price.InexactFloat64())
	}
	var (
		s   = Summary{Count: len(prices)}
		err error
	)
	if s.Min, err = prices.Min(); err != nil {
		return Summary{}, errors.Wrap(err, "price min")
	}
	if s.Max, err = prices.Max(); err != nil {
		return Summary{}, errors.Wrap(err, "price max")
	}
	if s.Mean, err = prices.Mean(); err != nil {
		return Summary{}, errors.Wrap(err, "price mean")
	}
	if s.Median, err = prices.Median(); err != nil {
		return Summary{}, errors.Wrap(err, "price median")
	}
	return s, nil
}
