package packet

// Extract parses the question and answer-side sections into the packet's
// Question/Answer/OptRecord cache (§4.7). It is idempotent: once extracted,
// further calls are a no-op that return success and leave the cache
// unchanged. Any parse failure aborts the pass entirely and restores the
// caller's read cursor.
func (p *Packet) Extract() error {
	if p.extracted {
		return nil
	}
	savedRindex := p.rindex
	p.rindex = HeaderSize

	qdcount := int(p.QDCount())
	ancount := int(p.ANCount())
	nscount := int(p.NSCount())
	arcount := int(p.ARCount())

	var questions []Question
	for i := 0; i < qdcount; i++ {
		key, cacheFlush, err := p.ReadKey()
		if err != nil {
			p.rindex = savedRindex
			return err
		}
		if p.protocol == Mdns && cacheFlush {
			p.rindex = savedRindex
			return ErrMalformed
		}
		if !isValidQuestionType(key.Type) {
			p.rindex = savedRindex
			return ErrMalformed
		}
		questions = append(questions, Question{Key: key})
	}

	total := ancount + nscount + arcount
	var answers []Answer
	var opt *OptRecord
	optSeen := false

	for i := 0; i < total; i++ {
		rr, err := p.ReadRR()
		if err != nil {
			p.rindex = savedRindex
			return err
		}

		if rr.Key.Type == TypeOPT {
			if optSeen || rr.Key.Name != "." || i < ancount+nscount {
				p.rindex = savedRindex
				return ErrMalformed
			}
			optSeen = true
			opt = &OptRecord{
				MaxUDPSize: rr.Key.Class,
				ExtRcode:   uint8(rr.TTL >> 24),
				Version:    uint8(rr.TTL >> 16),
				DNSSECOk:   rr.TTL&0x8000 != 0,
				RawOptions: rr.Raw,
			}
			continue
		}

		answers = append(answers, Answer{
			Record:      *rr,
			Cacheable:   i < ancount,
			SharedOwner: p.protocol == Mdns && !rr.CacheFlush,
			Ifindex:     p.ifindex,
		})
	}

	p.question = questions
	p.answer = answers
	p.opt = opt
	p.extracted = true
	p.rindex = savedRindex
	return nil
}

// Questions returns the question list populated by Extract, or nil before
// extraction.
func (p *Packet) Questions() []Question { return p.question }

// Answers returns the answer-side RR list populated by Extract, or nil
// before extraction.
func (p *Packet) Answers() []Answer { return p.answer }

// Opt returns the EDNS(0) OPT record found by Extract, or nil if the
// packet carried none.
func (p *Packet) Opt() *OptRecord { return p.opt }

// Extracted reports whether Extract has already run successfully.
func (p *Packet) Extracted() bool { return p.extracted }
