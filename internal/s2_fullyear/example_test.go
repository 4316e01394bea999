package s2_fullyear_test

import (
	"fmt"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/s2_fullyear"
)

func ExampleContractMonthEnd() {
	for _, name := range []string{"January19", "february19", "Dec19"} {
		d, err := s2_fullyear.ContractMonthEnd(name, 2019)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println(d.Format("2006-01-02"))
	}
	// Output:
	// 2019-01-31
	// 2019-02-28
	// 2019-12-31
}
