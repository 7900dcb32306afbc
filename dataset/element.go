package dataset

// Element is what gets displayed for one dataset: its rates over the last interval.
type Element struct {
	Name string `json:"name"`
	// Read operations and bytes per second.
	ReadOps   float64 `json:"ops_r"`
	ReadBytes float64 `json:"r_s"`
	// Write operations and bytes per second.
	WriteOps   float64 `json:"ops_w"`
	WriteBytes float64 `json:"w_s"`
	// Unlink operations and freed bytes per second.
	DeleteOps   float64 `json:"ops_d"`
	DeleteBytes float64 `json:"d_s"`
}

// Busy is the combined byte rate used to decide whether a dataset is idle.
func (e Element) Busy() float64 {
	return e.ReadBytes + e.WriteBytes + e.DeleteBytes
}

func compute(cur, prev *Snapshot, etime float64) Element {
	if prev == nil {
		return Element{
			Name:        cur.Name,
			ReadOps:     float64(cur.Reads) / etime,
			ReadBytes:   float64(cur.Nread) / etime,
			WriteOps:    float64(cur.Writes) / etime,
			WriteBytes:  float64(cur.Nwritten) / etime,
			DeleteOps:   float64(cur.Nunlinks) / etime,
			DeleteBytes: float64(cur.Nunlinked) / etime,
		}
	}
	return Element{
		Name:        cur.Name,
		ReadOps:     float64(cur.Reads-prev.Reads) / etime,
		ReadBytes:   float64(cur.Nread-prev.Nread) / etime,
		WriteOps:    float64(cur.Writes-prev.Writes) / etime,
		WriteBytes:  float64(cur.Nwritten-prev.Nwritten) / etime,
		DeleteOps:   float64(cur.Nunlinks-prev.Nunlinks) / etime,
		DeleteBytes: float64(cur.Nunlinked-prev.Nunlinked) / etime,
	}
}
