package collection

// Next returns the record after ref, which may be a record, a CID or an
// identity. The last record has no successor.
func (c *Collection) Next(ref any) (Record, bool) {
	return c.adjacent(ref, 1)
}

// Previous returns the record before ref. The first record has no predecessor.
func (c *Collection) Previous(ref any) (Record, bool) {
	return c.adjacent(ref, -1)
}

func (c *Collection) adjacent(ref any, step int) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.getLocked(ref)
	if !ok {
		return nil, false
	}
	if c.index == nil {
		c.buildIndex()
	}

	i, ok := c.index[r.CID()]
	if !ok {
		return nil, false
	}
	j := i + step
	if j < 0 || j >= len(c.records) {
		return nil, false
	}
	return c.records[j], true
}

// buildIndex maps every held record's CID to its position.
func (c *Collection) buildIndex() {
	c.index = make(map[string]int, len(c.records))
	for i, r := range c.records {
		c.index[r.CID()] = i
	}
}

// invalidate drops the position cache. Every structural change calls it.
func (c *Collection) invalidate() {
	c.index = nil
}
