package apu

// Duty cycle sequences for pulse channels (8 steps each)
var dutyCycles = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0}, // 12.5%
	{0, 1, 1, 0, 0, 0, 0, 0}, // 25%
	{0, 1, 1, 1, 1, 0, 0, 0}, // 50%
	{1, 0, 0, 1, 1, 1, 1, 1}, // 25% (negated)
}

// Triangle wave sequence (32 steps)
var triangleSequence = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

// Noise periods for different frequencies (NTSC)
var noisePeriods = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068,
}

// DMC rate table in CPU cycles (NTSC)
var dmcRates = [16]uint16{
	428, 380, 340, 320, 286, 254, 226, 214, 190, 160, 142, 128, 106, 84, 72, 54,
}

// palNoisePeriods is the PAL equivalent of noisePeriods; PAL's noise
// channel runs from a clock divided differently than NTSC's, giving a
// distinct period table despite the same 16 period-index values.
var palNoisePeriods = [16]uint16{
	4, 7, 14, 30, 60, 88, 118, 148, 188, 236, 354, 472, 708, 944, 1890, 3778,
}

// palDmcRates is the PAL equivalent of dmcRates.
var palDmcRates = [16]uint16{
	398, 354, 316, 298, 276, 236, 210, 198, 176, 148, 132, 118, 98, 78, 66, 50,
}

// noisePeriod returns the noise timer period for a 4-bit period index,
// selecting NTSC or PAL tables per the APU's configured Region. Dendy
// shares NTSC's audio tables.
func (a *APU) noisePeriod(index uint8) uint16 {
	if a.Region == RegionPAL {
		return palNoisePeriods[index&0x0F]
	}
	return noisePeriods[index&0x0F]
}

// dmcRate returns the DMC output-timer period for a 4-bit rate index,
// selecting NTSC or PAL tables per the APU's configured Region.
func (a *APU) dmcRate(index uint8) uint16 {
	if a.Region == RegionPAL {
		return palDmcRates[index&0x0F]
	}
	return dmcRates[index&0x0F]
}

// stepPulse steps a pulse channel
func (a *APU) stepPulse(pulse *PulseChannel) {
	if !pulse.Enabled {
		return
	}

	// Step timer
	if pulse.Timer > 0 {
		pulse.Timer--
	} else {
		pulse.Timer = pulse.TimerValue
		pulse.Sequence = (pulse.Sequence + 1) % 8
	}
}

// stepTriangle steps the triangle channel
func (a *APU) stepTriangle() {
	if !a.Triangle.Enabled {
		return
	}

	// Step timer
	if a.Triangle.Timer > 0 {
		a.Triangle.Timer--
	} else {
		a.Triangle.Timer = a.Triangle.TimerValue
		// Gate on length, linear, and a timer period above 1: ultrasonic
		// periods would otherwise step the sequencer faster than the DAC
		// can follow and produce a pop.
		if a.Triangle.Length.Value > 0 && a.Triangle.LinearCounter > 0 && a.Triangle.TimerValue > 1 {
			a.Triangle.Sequence = (a.Triangle.Sequence + 1) % 32
		}
	}
}

// stepNoise steps the noise channel
func (a *APU) stepNoise() {
	if !a.Noise.Enabled {
		return
	}

	// Step timer
	if a.Noise.Timer > 0 {
		a.Noise.Timer--
	} else {
		a.Noise.Timer = a.Noise.TimerValue

		// Step LFSR
		bit := uint16(0)
		if a.Noise.Mode {
			// Mode 1: tap bits 0 and 6
			bit = (a.Noise.ShiftReg & 1) ^ ((a.Noise.ShiftReg >> 6) & 1)
		} else {
			// Mode 0: tap bits 0 and 1
			bit = (a.Noise.ShiftReg & 1) ^ ((a.Noise.ShiftReg >> 1) & 1)
		}

		a.Noise.ShiftReg = (a.Noise.ShiftReg >> 1) | (bit << 14)
	}
}

// stepDMC steps the DMC channel's output timer, one CPU cycle at a
// time, counting down from the rate table period rather than testing
// the global cycle counter against it (which drifts whenever the rate
// changes mid-sample).
func (a *APU) stepDMC() {
	if !a.DMC.Enabled {
		return
	}

	if a.DMC.dmcTimer > 0 {
		a.DMC.dmcTimer--
		return
	}
	a.DMC.dmcTimer = a.dmcRate(a.DMC.Rate)
	a.stepDMCSample()
}

// stepDMCSample processes DMC sample data: refills the sample buffer
// via a CPU bus read (stalling the CPU is the scheduler's job, not
// modeled here), then shifts one bit into the 7-bit output counter.
func (a *APU) stepDMCSample() {
	if a.DMC.BufferEmpty && a.DMC.CurrentLength > 0 && a.Memory != nil {
		a.DMC.SampleBuffer = a.Memory.Read(a.DMC.CurrentAddress)
		a.DMC.BufferEmpty = false
		a.dmcFetches++
		if a.DMC.CurrentAddress == 0xFFFF {
			a.DMC.CurrentAddress = 0x8000
		} else {
			a.DMC.CurrentAddress++
		}
		a.DMC.CurrentLength--

		if a.DMC.CurrentLength == 0 {
			if a.DMC.Loop {
				a.DMC.CurrentLength = a.DMC.SampleLength
				a.DMC.CurrentAddress = a.DMC.SampleAddress
			} else if a.DMC.IRQEnabled {
				a.DMC.IRQFlag = true
			}
		}
	}

	if a.DMC.BitsRemaining == 0 {
		a.DMC.BitsRemaining = 8
		if !a.DMC.BufferEmpty {
			a.DMC.Buffer = a.DMC.SampleBuffer
			a.DMC.BufferEmpty = true
			a.DMC.Silence = false
		} else {
			a.DMC.Silence = true
		}
	}

	if a.DMC.BitsRemaining > 0 && !a.DMC.Silence {
		a.DMC.BitsRemaining--
		bit := (a.DMC.Buffer >> a.DMC.BitsRemaining) & 1

		if bit == 1 && a.DMC.LoadCounter <= 125 {
			a.DMC.LoadCounter += 2
		} else if bit == 0 && a.DMC.LoadCounter >= 2 {
			a.DMC.LoadCounter -= 2
		}
	}
}

// stepEnvelope steps an envelope generator
func (a *APU) stepEnvelope(env *EnvelopeGenerator) {
	if env.Start {
		env.Start = false
		env.Counter = 15
		env.Divider = env.Volume
	} else {
		if env.Divider > 0 {
			env.Divider--
		} else {
			env.Divider = env.Volume
			if env.Counter > 0 {
				env.Counter--
			} else if env.Loop {
				env.Counter = 15
			}
		}
	}
}

// stepLengthCounter steps a length counter
func (a *APU) stepLengthCounter(lc *LengthCounter) {
	if lc.Enabled && !lc.Halt && lc.Value > 0 {
		lc.Value--
	}
}

// stepSweep steps a sweep unit's divider. A reload only re-arms the
// divider for the following clock; the sweep is applied on the clock
// where the divider reaches zero, never on the reload clock itself.
func (a *APU) stepSweep(pulse *PulseChannel, sweep *SweepUnit, channel1 bool) {
	if sweep.Reload {
		sweep.Counter = sweep.Period
		sweep.Reload = false
		return
	}

	if sweep.Counter == 0 {
		if sweep.Enabled && sweep.Shift != 0 {
			a.performSweep(pulse, sweep, channel1)
		}
		sweep.Counter = sweep.Period
	} else {
		sweep.Counter--
	}
}

// performSweep performs the actual sweep calculation
func (a *APU) performSweep(pulse *PulseChannel, sweep *SweepUnit, channel1 bool) {
	change := pulse.TimerValue >> sweep.Shift
	var targetPeriod uint16

	if sweep.Negate {
		if channel1 {
			// Pulse 1 uses one's complement
			targetPeriod = pulse.TimerValue - change - 1
		} else {
			// Pulse 2 uses two's complement
			targetPeriod = pulse.TimerValue - change
		}
	} else {
		targetPeriod = pulse.TimerValue + change
	}

	// Update timer if sweep is valid
	if targetPeriod >= 8 && targetPeriod <= 0x7FF {
		pulse.TimerValue = targetPeriod
	}
}

// getPulseOutput gets the output value for a pulse channel
func (a *APU) getPulseOutput(pulse *PulseChannel) uint8 {
	if !pulse.Enabled || pulse.Length.Value == 0 {
		return 0
	}

	// Check if timer is too low or high
	if pulse.TimerValue < 8 || pulse.TimerValue > 0x7FF {
		return 0
	}

	// Check if sweep unit would mute the channel
	if a.isSweepMuting(pulse, &pulse.Sweep) {
		return 0
	}

	// Get duty cycle output
	dutyOutput := dutyCycles[pulse.DutyCycle][pulse.Sequence]
	if dutyOutput == 0 {
		return 0
	}

	// Get envelope output
	var volume uint8
	if pulse.Envelope.Constant {
		volume = pulse.Volume
	} else {
		volume = pulse.Envelope.Counter
	}

	return volume
}

// isSweepMuting checks if sweep unit would mute the channel
func (a *APU) isSweepMuting(pulse *PulseChannel, sweep *SweepUnit) bool {
	if !sweep.Enabled {
		return false
	}

	change := pulse.TimerValue >> sweep.Shift
	var targetPeriod uint16

	if sweep.Negate {
		// Calculate target period for negative sweep
		if change <= pulse.TimerValue {
			targetPeriod = pulse.TimerValue - change
		} else {
			return true // Would underflow
		}
	} else {
		// Calculate target period for positive sweep
		targetPeriod = pulse.TimerValue + change
	}

	// Mute if target period is out of valid range
	return targetPeriod < 8 || targetPeriod > 0x7FF
}

// getTriangleOutput gets the output value for the triangle channel
func (a *APU) getTriangleOutput() uint8 {
	if !a.Triangle.Enabled || a.Triangle.Length.Value == 0 || a.Triangle.LinearCounter == 0 {
		return 0
	}

	return triangleSequence[a.Triangle.Sequence]
}

// getNoiseOutput gets the output value for the noise channel
func (a *APU) getNoiseOutput() uint8 {
	if !a.Noise.Enabled || a.Noise.Length.Value == 0 {
		return 0
	}

	// Check if shift register bit 0 is set
	if a.Noise.ShiftReg&1 != 0 {
		return 0
	}

	// Get envelope output
	var volume uint8
	if a.Noise.Envelope.Constant {
		volume = a.Noise.Volume
	} else {
		volume = a.Noise.Envelope.Counter
	}

	return volume
}

// getDMCOutput gets the output value for the DMC channel
func (a *APU) getDMCOutput() uint8 {
	// DMC output is more complex, placeholder for now
	if !a.DMC.Enabled {
		return 0
	}
	return a.DMC.LoadCounter
}

// MixSample mixes all five channels through the documented non-linear
// NES mixer and returns the resulting 8-bit DAC sample.
func (a *APU) MixSample() uint8 {
	pulse1 := a.getPulseOutput(&a.Pulse1)
	pulse2 := a.getPulseOutput(&a.Pulse2)
	triangle := a.getTriangleOutput()
	noise := a.getNoiseOutput()
	dmc := a.getDMCOutput()

	var pulseOut float64
	if pulseSum := float64(pulse1) + float64(pulse2); pulseSum > 0 {
		pulseOut = 95.88 / (8128.0/pulseSum + 100.0)
	}

	var tndOut float64
	if tnd := float64(triangle)/8227.0 + float64(noise)/12241.0 + float64(dmc)/22638.0; tnd > 0 {
		tndOut = 159.79 / (1.0/tnd + 100.0)
	}

	sample := 128.0 + (pulseOut+tndOut)*127.0
	if sample > 255.0 {
		sample = 255.0
	} else if sample < 0.0 {
		sample = 0.0
	}
	return uint8(sample)
}

// stepLinearCounter steps the triangle's linear counter
func (a *APU) stepLinearCounter() {
	// Check reload flag
	if a.Triangle.LinearControl {
		a.Triangle.LinearCounter = a.Triangle.LinearReload
	} else if a.Triangle.LinearCounter > 0 {
		a.Triangle.LinearCounter--
	}

	// Clear reload flag if control flag is not set
	if !a.Triangle.Length.Halt {
		a.Triangle.LinearControl = false
	}
}

// frameSequencerStep performs quarter frame and half frame operations
func (a *APU) frameSequencerStep(quarter, half bool) {
	if quarter {
		a.stepEnvelopes()
		a.stepLinearCounter()
	}

	if half {
		a.stepLengthCounters()
		a.stepSweeps()
	}
}
