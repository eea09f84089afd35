package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders flattened daily series rows as a CSV string.
func RenderCSV(rows []DailyRow) string {
	var sb strings.Builder

	sb.WriteString("domain,date,field,value\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%.6f\n",
			row.Domain, row.Date, row.Field, row.Value))
	}

	return sb.String()
}
