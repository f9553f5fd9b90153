package thermo_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mvellank/surfkin/internal/thermo"
)

var _ = Describe("GasCorrection", func() {
	Context("with a tabulated gas", func() {
		It("reduces to -T*S at the 298.15 K reference", func() {
			// NIST standard entropy of CO is 197.66 J/(mol K); the enthalpy
			// term vanishes at the reference temperature.
			c, err := thermo.GasCorrection("CO_g", 298.15)
			Expect(err).NotTo(HaveOccurred())
			Expect(c).To(BeNumerically("~", -0.611, 0.002))
		})

		It("grows more negative with temperature", func() {
			low, err := thermo.GasCorrection("CO_g", 400)
			Expect(err).NotTo(HaveOccurred())
			high, err := thermo.GasCorrection("CO_g", 800)
			Expect(err).NotTo(HaveOccurred())
			Expect(high).To(BeNumerically("<", low))
			Expect(low).To(BeNumerically("<", 0))
		})

		It("rejects temperatures outside every tabulated window", func() {
			_, err := thermo.GasCorrection("CO_g", 2000)
			var oor *thermo.OutOfRangeError
			Expect(err).To(BeAssignableToTypeOf(oor))
			Expect(err.Error()).To(ContainSubstring("CO_g"))
		})
	})

	Context("with an untabulated gas", func() {
		It("falls back to the default fixed entropy", func() {
			c, err := thermo.GasCorrection("Ar_g", 300)
			Expect(err).NotTo(HaveOccurred())
			Expect(c).To(Equal(-300 * thermo.DefaultFixedEntropy))
		})
	})
})

var _ = Describe("FixedEntropyCorrection", func() {
	It("uses the per-gas entropy when one is listed", func() {
		Expect(thermo.FixedEntropyCorrection("H2_g", 300)).To(BeNumerically("~", -0.405, 1e-12))
	})

	It("uses the default otherwise", func() {
		Expect(thermo.FixedEntropyCorrection("CO_g", 500)).To(BeNumerically("~", -1.0, 1e-12))
	})
})

var _ = Describe("Corrections", func() {
	It("covers every requested gas", func() {
		corr, err := thermo.Corrections([]string{"CO_g", "O2_g", "CO2_g"}, 500)
		Expect(err).NotTo(HaveOccurred())
		Expect(corr).To(HaveLen(3))
		for name, c := range corr {
			Expect(c).To(BeNumerically("<", 0), "correction for %s", name)
		}
	})

	It("propagates out-of-range errors", func() {
		_, err := thermo.Corrections([]string{"CO_g"}, 5000)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("HasShomateData", func() {
	It("distinguishes tabulated from untabulated gases", func() {
		Expect(thermo.HasShomateData("CH3OH_g")).To(BeTrue())
		Expect(thermo.HasShomateData("Ar_g")).To(BeFalse())
	})
})
