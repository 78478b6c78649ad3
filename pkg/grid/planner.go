package grid

// PlanPages computes the ordered list of page numbers that must be
// available to gather desiredCount records starting at startPage. It is
// pure arithmetic: every page is assumed to contribute up to pageSize
// records, and the bulk selector corrects for the dataset's true last
// page during assembly.
//
// A non-positive desiredCount, startPage, or pageSize yields an empty plan.
func PlanPages(desiredCount, startPage, pageSize int) []int {
	if desiredCount <= 0 || startPage < 1 || pageSize < 1 {
		return nil
	}

	var plan []int
	remaining := desiredCount
	for page := startPage; remaining > 0; page++ {
		plan = append(plan, page)
		remaining -= pageSize
	}
	return plan
}
