package entity

// Category is one home-service category shown on the browse page and
// referenced by service requests. Names are bilingual for the Jordan market.
type Category struct {
	ID     string `db:"id" json:"id"`
	Slug   string `db:"slug" json:"slug"`
	NameEn string `db:"name_en" json:"name_en"`
	NameAr string `db:"name_ar" json:"name_ar"`
	Active bool   `db:"active" json:"active"`
}
