package domain

import (
	"bytes"
	"strconv"
)

// BannerID tolerates documents where the id was written as either a JSON
// number or a numeric string; it always marshals back as a number.
type BannerID int

func (b *BannerID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return err
	}
	*b = BannerID(n)
	return nil
}

func (b BannerID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(b))), nil
}

// Banner is a promotional entry shown on the home page. The collection is
// fixed-size: banners are seeded at first start and only ever updated.
type Banner struct {
	ID      BannerID `json:"id"`
	Image   string   `json:"imagem"`
	Caption string   `json:"legenda"`
	Link    string   `json:"link"`
}
