package severity

import "github.com/panbanda/oometrics/pkg/metric"

func defaultRanges() map[metric.Type]Range {
	basic := map[metric.Type]Basic{
		metric.WMC:   {12, 35, 45},
		metric.DIT:   {3, 5, 7},
		metric.CBO:   {14, 17, 23},
		metric.RFC:   {45, 65, 80},
		metric.NOC:   {2, 4, 7},
		metric.NOA:   {4, 9, 14},
		metric.NOOM:  {3, 5, 8},
		metric.NOM:   {7, 15, 25},
		metric.Ce:    {7, 17, 33},
		metric.Ca:    {8, 40, 65},
		metric.LOC:   {11, 31, 47},
		metric.CC:    {3, 5, 7},
		metric.CND:   {2, 3, 4},
		metric.LND:   {2, 3, 4},
		metric.NOPM:  {3, 4, 5},
		metric.FDP:   {3, 5, 7},
		metric.NOAV:  {3, 5, 7},
		metric.MND:   {3, 5, 7},
		metric.CINT:  {7, 11, 15},
		metric.ATFD:  {6, 8, 10},
		metric.NOPA:  {3, 5, 12},
		metric.NOAC:  {4, 7, 13},
		metric.NCSS:  {1000, 1500, 2000},
		metric.LCOM:  {51, 75, 90},
		metric.NOAM:  {3, 5, 7},
		metric.NOO:   {30, 50, 70},
		metric.SIZE2: {131, 161, 181},
		metric.MPC:   {11, 15, 20},
		metric.DAC:   {16, 22, 34},
		metric.NOL:   {5, 7, 9},
	}
	derivative := map[metric.Type]Derivative{
		metric.LAA:   {From: 0.33, To: 1.00},
		metric.CDISP: {From: 0.00, To: 0.50},
		metric.TCC:   {From: 0.33, To: 1.00},
		metric.WOC:   {From: 0.50, To: 1.00},
		metric.I:     {From: 0.00, To: 1.00},
		metric.A:     {From: 0.00, To: 1.00},
		metric.D:     {From: 0.00, To: 0.70},
		metric.MHF:   {From: 0.095, To: 0.369},
		metric.AHF:   {From: 0.677, To: 1.00},
		metric.MIF:   {From: 0.609, To: 0.844},
		metric.AIF:   {From: 0.374, To: 0.757},
		metric.CF:    {From: 0.00, To: 0.243},
		metric.PF:    {From: 0.017, To: 0.151},
	}

	out := make(map[metric.Type]Range, len(basic)+len(derivative))
	for mt, b := range basic {
		out[mt] = b
	}
	for mt, d := range derivative {
		out[mt] = d
	}
	return out
}
