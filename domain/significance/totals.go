package significance

import "fmt"

// Totals are the variant counts behind a significance page.
//
// Variants is every variant in scope, Ever those with at least one submission
// of the significance, and Never those with at least one submission pair where
// neither side reported it.
type Totals struct {
	Variants int `json:"total_variants"`
	Ever     int `json:"total_variants_ever"`
	Never    int `json:"total_variants_never"`
}

// Unanimous is the number of variants every submitter classified with the
// significance.
func (t Totals) Unanimous() int {
	return t.Variants - t.Never
}

// Validate rejects totals that cannot come from one consistent snapshot
func (t Totals) Validate() error {
	if t.Variants < 0 || t.Ever < 0 || t.Never < 0 {
		return fmt.Errorf("negative variant totals %+v", t)
	}
	u := t.Unanimous()
	if u < 0 {
		return fmt.Errorf("total_variants_never (%d) exceeds total_variants (%d)", t.Never, t.Variants)
	}
	if u > t.Ever {
		return fmt.Errorf("unanimous total %d exceeds total_variants_ever %d", u, t.Ever)
	}
	return nil
}
