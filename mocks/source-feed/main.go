// Command source-feed is a stand-in for the legacy customs system's export
// endpoint. It serves a fixed feed document so the importer can be exercised
// locally without access to the real system.
package main

import (
	"flag"
	"log"
	"net/http"
)

const feed = `{
  "vehicles": [
    {"id": "veh-100", "plate_no": "WGM 4401", "country": "PL", "make": "Scania", "model": "R450", "vin": "YS2R4X20005399401"},
    {"id": "veh-101", "plate_no": "KJD 912", "country": "LT", "make": "Volvo", "model": "FH16", "vin": "YV2RT40A8EB123456"}
  ],
  "parties": [
    {"id": "party-100", "name": "Baltic Freight OU", "type": "company", "country": "EE", "registration_no": "14203987"},
    {"id": "party-101", "name": "TransKaunas UAB", "type": "company", "country": "LT", "registration_no": "304512678"}
  ],
  "cases": [
    {
      "id": "case-100",
      "vehicle_id": "veh-100",
      "status": "released",
      "route": "EE-LV-LT-PL",
      "origin_country": "EE",
      "destination_country": "PL",
      "declared_value": 5000,
      "previous_violations": 0,
      "arrived_at": "2026-01-30T06:30:00Z",
      "cargo_items": [
        {"id": "cargo-100", "hs_code": "4407119900", "description": "Sawn timber", "weight": 21000, "value": 5000, "currency": "EUR"}
      ],
      "inspections": [
        {"id": "insp-100", "type": "document", "status": "completed", "decision": "release",
         "reason": "Released after document inspection", "performed_at": "2026-01-30T09:15:00Z", "created_at": "2026-01-30T08:00:00Z"}
      ],
      "documents": [
        {"id": "doc-100", "type": "cmr", "file_path": "exports/case-100/cmr.pdf", "uploaded_at": "2026-01-30T07:00:00Z"}
      ],
      "parties": [
        {"party_id": "party-100", "role": "carrier"}
      ]
    },
    {
      "id": "case-101",
      "vehicle_id": "veh-101",
      "status": "in_inspection",
      "route": "IR-TR-BG-RO-LT",
      "origin_country": "IR",
      "destination_country": "LT",
      "declared_value": 180000,
      "actual_value": 240000,
      "previous_violations": 3,
      "arrived_at": "2026-02-02T22:10:00Z",
      "cargo_items": [
        {"id": "cargo-101", "hs_code": "2710199900", "description": "Lubricating oils", "weight": 18000, "value": 180000, "currency": "EUR"}
      ],
      "inspections": [
        {"id": "insp-101", "type": "physical", "status": "pending", "created_at": "2026-02-03T08:00:00Z"}
      ],
      "documents": [],
      "parties": [
        {"party_id": "party-101", "role": "carrier"},
        {"party_id": "party-100", "role": "declarant"}
      ]
    }
  ]
}`

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("/export/cases", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feed))
	})

	log.Printf("source-feed stub listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, mux))
}
