package dataset

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/zalepa/agencydash/metrics"
)

// hclFile is the top-level structure of an HCL dataset:
//
//	agency "KAL HOME HEALTH INC" {
//	  da_unsigned    = 1
//	  da_prepared_3m = 0
//	  rpa_found      = 0
//	  ehr_signed     = 0
//	  da_filed       = 0
//	}
type hclFile struct {
	Agencies []hclAgency `hcl:"agency,block"`
}

// hclAgency declares one row. Attributes are optional so that a row missing
// a field reaches BuildTable and fails its schema check there.
type hclAgency struct {
	Name          string `hcl:"name,label"`
	DAUnsigned    *int64 `hcl:"da_unsigned,optional"`
	DAPrepared3M  *int64 `hcl:"da_prepared_3m,optional"`
	RPAFound      *int64 `hcl:"rpa_found,optional"`
	RPADBUnsigned *int64 `hcl:"rpa_db_unsigned,optional"`
	EHRSigned     *int64 `hcl:"ehr_signed,optional"`
	DAFiled       *int64 `hcl:"da_filed,optional"`
}

func decodeHCL(filename string, src []byte) ([]metrics.Record, error) {
	var file hclFile
	if err := hclsimple.Decode(filename, src, nil, &file); err != nil {
		if diags, ok := err.(hcl.Diagnostics); ok {
			for _, diag := range diags {
				if diag.Severity == hcl.DiagError {
					return nil, fmt.Errorf("HCL error at %s: %s", diag.Subject, diag.Detail)
				}
			}
		}
		return nil, err
	}

	records := make([]metrics.Record, 0, len(file.Agencies))
	for _, a := range file.Agencies {
		if a.RPAFound != nil && a.RPADBUnsigned != nil {
			return nil, fmt.Errorf("agency %q: %w: rpa_found and rpa_db_unsigned are the same field", a.Name, ErrDuplicateField)
		}
		rpa := a.RPAFound
		if rpa == nil {
			rpa = a.RPADBUnsigned
		}

		rec := metrics.Record{Agency: a.Name, Values: make(map[metrics.Metric]int64)}
		for m, v := range map[metrics.Metric]*int64{
			metrics.DAUnsigned:   a.DAUnsigned,
			metrics.DAPrepared3M: a.DAPrepared3M,
			metrics.RPAFound:     rpa,
			metrics.EHRSigned:    a.EHRSigned,
			metrics.DAFiled:      a.DAFiled,
		} {
			if v != nil {
				rec.Values[m] = *v
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
