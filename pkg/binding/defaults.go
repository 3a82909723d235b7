package binding

import "net/http"

// Defaults returns the stowage console bindings: imports, placement, search,
// retrieval, waste management, simulation, logs and export.
func Defaults() []FormBinding {
	return []FormBinding{
		{
			ID:             "importContainersForm",
			Title:          "Import containers",
			Method:         http.MethodPost,
			URL:            "/api/import/containers",
			Encoding:       EncodingMultipart,
			ResultRegion:   "containersResult",
			Fields:         []FieldSpec{{Name: "containersFile", Kind: FieldFile, Label: "Containers CSV", Required: true}},
			SuccessMessage: "Successfully imported {{ containersImported }} containers.",
		},
		{
			ID:             "importItemsForm",
			Title:          "Import items",
			Method:         http.MethodPost,
			URL:            "/api/import/items",
			Encoding:       EncodingMultipart,
			ResultRegion:   "itemsResult",
			Fields:         []FieldSpec{{Name: "itemsFile", Kind: FieldFile, Label: "Items CSV", Required: true}},
			SuccessMessage: "Successfully imported {{ itemsImported }} items.",
		},
		{
			ID:             "triggerPlacementButton",
			Title:          "Trigger placement",
			Trigger:        TriggerClick,
			Method:         http.MethodPost,
			URL:            "/api/placement",
			Encoding:       EncodingJSON,
			ResultRegion:   "placementResult",
			Params:         map[string]any{},
			LoadingMessage: "Processing... Please wait.",
			SuccessMessage: "Placement successful!",
			Toggle:         true,
		},
		{
			ID:           "searchForm",
			Title:        "Search item",
			Method:       http.MethodGet,
			URL:          "/api/search",
			Encoding:     EncodingQuery,
			ResultRegion: "searchResult",
			Fields: []FieldSpec{
				{Name: "searchType", Label: "Search by", Options: []string{"itemId", "itemName"}, Required: true},
				{Name: "searchQuery", Label: "Query", ParamFrom: "searchType", Required: true},
			},
		},
		{
			ID:           "retrieveForm",
			Title:        "Retrieve item",
			Method:       http.MethodPost,
			URL:          "/api/retrieve",
			Encoding:     EncodingJSON,
			ResultRegion: "retrieveResult",
			Fields:       []FieldSpec{{Name: "itemId", Kind: FieldInt, Label: "Item ID", Required: true}},
		},
		{
			ID:           "identifyWasteButton",
			Title:        "Identify waste",
			Trigger:      TriggerClick,
			Method:       http.MethodGet,
			URL:          "/api/waste/identify",
			Encoding:     EncodingQuery,
			ResultRegion: "wasteIdentifyResult",
		},
		{
			ID:           "wasteReturnPlanForm",
			Title:        "Waste return plan",
			Method:       http.MethodPost,
			URL:          "/api/waste/return-plan",
			Encoding:     EncodingJSON,
			ResultRegion: "wasteReturnPlanResult",
			Fields: []FieldSpec{
				{Name: "undockingContainerId", Label: "Undocking container", Required: true},
				{Name: "undockingDate", Label: "Undocking date (ISO 8601)", Required: true},
				{Name: "maxWeight", Kind: FieldFloat, Label: "Max weight", Required: true},
			},
		},
		{
			ID:           "completeUndockingForm",
			Title:        "Complete undocking",
			Method:       http.MethodPost,
			URL:          "/api/waste/complete-undocking",
			Encoding:     EncodingJSON,
			ResultRegion: "completeUndockingResult",
			Fields: []FieldSpec{
				{Name: "undockingContainerId", Label: "Undocking container", Required: true},
				{Name: "timestamp", Label: "Timestamp (ISO 8601)"},
			},
		},
		{
			ID:           "simulateForm",
			Title:        "Simulate days",
			Method:       http.MethodPost,
			URL:          "/api/simulate/day",
			Encoding:     EncodingJSON,
			ResultRegion: "simulateResult",
			Fields: []FieldSpec{
				{Name: "numOfDays", Kind: FieldInt, Label: "Number of days"},
				{Name: "itemsToBeUsedPerDay", Kind: FieldList, Label: "Items used per day", Help: "comma separated item IDs"},
			},
		},
		{
			ID:           "logsForm",
			Title:        "Fetch logs",
			Method:       http.MethodGet,
			URL:          "/api/logs",
			Encoding:     EncodingQuery,
			ResultRegion: "logsResult",
			Fields: []FieldSpec{
				{Name: "startDate", Label: "Start date"},
				{Name: "endDate", Label: "End date"},
				{Name: "itemId", Label: "Item ID"},
				{Name: "userId", Label: "User ID"},
				{Name: "actionType", Label: "Action type"},
			},
			SuccessFlagOptional: true,
		},
		{
			ID:             "exportArrangementButton",
			Title:          "Export arrangement",
			Trigger:        TriggerClick,
			Method:         http.MethodGet,
			URL:            "/api/export/arrangement",
			Encoding:       EncodingQuery,
			ResultRegion:   "exportResult",
			Response:       ResponseText,
			SuccessMessage: "Arrangement exported.",
		},
	}
}

// DefaultTable returns the validated built-in table.
func DefaultTable() *Table {
	return MustNewTable(Defaults()...)
}
