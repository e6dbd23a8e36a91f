package valuation

// roadBasic is a large basic-design road tender bid by a large firm.
func roadBasic() Tier0Input {
	return Tier0Input{
		ProjectID:          "R-520",
		ContractAmount:     520,
		InfraType:          InfraRoad,
		DesignPhase:        PhaseBasic,
		ContractDuration:   1.8,
		ProcurementType:    ProcurementLimited,
		ClientType:         ClientCentral,
		FirmSize:           FirmLarge,
		BIMYears:           8,
		SameTypeCount:      6,
		CurrentUtilization: 0.70,
	}
}

// bridgeDetailed is a small, thin-margin detailed-design bridge job.
func bridgeDetailed() Tier0Input {
	return Tier0Input{
		ProjectID:          "B-095",
		ContractAmount:     95,
		InfraType:          InfraBridge,
		DesignPhase:        PhaseDetailed,
		ContractDuration:   1.5,
		ProcurementType:    ProcurementNegotiated,
		ClientType:         ClientLocal,
		FirmSize:           FirmSmall,
		BIMYears:           2,
		SameTypeCount:      2,
		CurrentUtilization: 0.60,
	}
}

func tunnelOpen() Tier0Input {
	return Tier0Input{
		ProjectID:          "T-310",
		ContractAmount:     310,
		InfraType:          InfraTunnel,
		DesignPhase:        PhaseBasic,
		ContractDuration:   2.6,
		ProcurementType:    ProcurementOpen,
		ClientType:         ClientPublicCorp,
		FirmSize:           FirmMedium,
		BIMYears:           0,
		SameTypeCount:      14,
		CurrentUtilization: 0.95,
	}
}

func mustDerive(in Tier0Input) Tier1Parameters {
	p, err := DeriveTier1(in)
	if err != nil {
		panic(err)
	}
	return p
}
